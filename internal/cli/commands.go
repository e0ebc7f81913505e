// internal/cli/commands.go
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnnekeHeelsum/android-uploader/autoconfig"
	"github.com/AnnekeHeelsum/android-uploader/barcode"
	"github.com/AnnekeHeelsum/android-uploader/settings"
	"github.com/AnnekeHeelsum/android-uploader/urlutil"
)

func payloadPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func buildApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [file|-]",
		Short: "Apply a setup payload to the settings store",
		Long: `Reads a payload from file, or stdin when omitted or "-", and applies it.
Empty input is treated as a cancelled scan and changes nothing.
Exit status is 2 when the payload is rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			policy := autoconfig.New(store, writerReporter{cmd.ErrOrStderr()}, a.logger)
			res, err := policy.HandleScan(cmd.Context(), fileSource{path: payloadPath(args), stdin: cmd.InOrStdin()})
			if err != nil {
				return err
			}
			switch res.Outcome {
			case autoconfig.Cancelled:
				fmt.Fprintln(cmd.OutOrStdout(), "scan cancelled; nothing changed")
			case autoconfig.Rejected:
				return errRejected
			default:
				describeDelta(cmd.OutOrStdout(), res.Delta)
			}
			return nil
		},
	}
}

func buildPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [file|-]",
		Short: "Validate a setup payload and print the changes it would make",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, ok, err := fileSource{path: payloadPath(args), stdin: cmd.InOrStdin()}.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "empty payload; nothing to plan")
				return nil
			}
			delta, err := autoconfig.Plan(barcode.Decode(payload))
			var verr *autoconfig.ValidationError
			if errors.As(err, &verr) {
				writerReporter{cmd.ErrOrStderr()}.Report(verr.Message)
				return errRejected
			}
			if err != nil {
				return err
			}
			describeDelta(cmd.OutOrStdout(), delta)
			return nil
		},
	}
}

func buildShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := settings.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Redacted())
		},
	}
}

func buildSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Edit one setting by hand",
		Long: "Keys: " + strings.Join(settings.Keys, ", ") + `

URI-valued keys are validated before they are written. An empty value
removes the key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			err = autoconfig.Edit(cmd.Context(), store, args[0], args[1])
			var verr *autoconfig.ValidationError
			if errors.As(err, &verr) {
				writerReporter{cmd.ErrOrStderr()}.Report(verr.Message)
				return errRejected
			}
			return err
		},
	}
}

func buildEncodeCmd(a *app) *cobra.Command {
	var (
		docURI, collection, deviceStatus string
		apiURIs                          []string
		brokerURI, out                   string
		size                             int
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a setup payload and optionally render it as a QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg barcode.Config
			flags := cmd.Flags()
			if flags.Changed("document-store-uri") || flags.Changed("collection") || flags.Changed("device-status-collection") {
				cfg.DocumentStore = &barcode.DocumentStoreConfig{
					URI:                    changed(flags.Changed("document-store-uri"), docURI),
					Collection:             changed(flags.Changed("collection"), collection),
					DeviceStatusCollection: changed(flags.Changed("device-status-collection"), deviceStatus),
				}
			}
			for _, u := range apiURIs {
				cfg.APITargets = append(cfg.APITargets, urlutil.SplitURIs(u)...)
			}
			if flags.Changed("broker-uri") {
				cfg.Broker = &barcode.BrokerConfig{URI: changed(true, brokerURI)}
			}

			// Refuse to print a code the uploader would reject.
			if _, err := autoconfig.Plan(cfg); err != nil {
				var verr *autoconfig.ValidationError
				if errors.As(err, &verr) {
					writerReporter{cmd.ErrOrStderr()}.Report(verr.Message)
					return errRejected
				}
				return err
			}

			payload, err := barcode.Encode(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)

			if out == "" {
				return nil
			}
			png, err := barcode.QR(payload, size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("wrote QR code", zap.String("file", out), zap.Int("size", size))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&docURI, "document-store-uri", "", "MongoDB connection string")
	f.StringVar(&collection, "collection", "", "Entries collection override")
	f.StringVar(&deviceStatus, "device-status-collection", "", "Device status collection override")
	f.StringSliceVar(&apiURIs, "api", nil, "REST API base URI (repeatable or comma-separated)")
	f.StringVar(&brokerURI, "broker-uri", "", "MQTT broker URI with user:password")
	f.StringVar(&out, "out", "", "Write a PNG QR code to this file")
	f.IntVar(&size, "size", 256, "QR code size in pixels")
	return cmd
}

func changed(set bool, v string) *string {
	v = strings.TrimSpace(v)
	if !set || v == "" {
		return nil
	}
	return &v
}

// describeDelta prints one line per target. URIs are redacted.
func describeDelta(w io.Writer, d autoconfig.Delta) {
	ds := d.DocumentStore
	line := fmt.Sprintf("document_store: %s", ds.Action)
	if ds.Action == autoconfig.Enabled {
		line += " uri=" + urlutil.Redact(ds.URI)
		if ds.Collection != nil {
			line += " collection=" + *ds.Collection
		}
		if ds.DeviceStatusCollection != nil {
			line += " device_status_collection=" + *ds.DeviceStatusCollection
		}
	}
	fmt.Fprintln(w, line)

	line = fmt.Sprintf("api: %s", d.API.Action)
	if d.API.Action == autoconfig.Enabled {
		redacted := make([]string, len(d.API.BaseURIs))
		for i, u := range d.API.BaseURIs {
			redacted[i] = urlutil.Redact(u)
		}
		line += " base_uris=" + strings.Join(redacted, ",")
	}
	fmt.Fprintln(w, line)

	b := d.Broker
	line = fmt.Sprintf("broker: %s", b.Action)
	switch {
	case b.Action == autoconfig.Enabled:
		line += " " + b.Credentials.String()
	case b.SkipReason != nil:
		line += " (" + b.SkipReason.Error() + ")"
	}
	fmt.Fprintln(w, line)
}

package autoconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/AnnekeHeelsum/android-uploader/settings"
)

func TestEdit(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    string // stored value; "" means key absent
		wantErr bool
		target  Target
	}{
		{name: "api list split and stored", key: settings.APIBaseURIs, value: "https://a.example, https://s@b.example/api/v1", want: `["https://a.example","https://s@b.example/api/v1"]`},
		{name: "api bad element", key: settings.APIBaseURIs, value: "https://a.example ftp://b.example", wantErr: true, target: TargetAPI},
		{name: "document store uri", key: settings.DocumentStoreURI, value: " mongodb://db.example/x ", want: "mongodb://db.example/x"},
		{name: "document store bad scheme", key: settings.DocumentStoreURI, value: "mysql://db.example/x", wantErr: true, target: TargetDocumentStore},
		{name: "broker endpoint", key: settings.BrokerEndpoint, value: "tcp://broker.example:1883", want: "tcp://broker.example:1883"},
		{name: "broker endpoint without port", key: settings.BrokerEndpoint, value: "tcp://broker.example", wantErr: true, target: TargetBroker},
		{name: "broker endpoint with credentials", key: settings.BrokerEndpoint, value: "tcp://u:p@broker.example:1883", wantErr: true, target: TargetBroker},
		{name: "enabled flag normalized", key: settings.BrokerEnabled, value: "1", want: "true"},
		{name: "enabled flag bad", key: settings.APIEnabled, value: "maybe", wantErr: true},
		{name: "free-form field", key: settings.BrokerUsername, value: "alice", want: "alice"},
		{name: "empty removes", key: settings.DocumentStoreCollection, value: "  ", want: ""},
		{name: "api list of separators removes", key: settings.APIBaseURIs, value: ",, ,", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := settings.NewMemoryStore(map[string]string{settings.DocumentStoreCollection: "old"})

			err := Edit(ctx, store, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Edit succeeded, want error")
				}
				if tt.target != "" {
					var verr *ValidationError
					if !errors.As(err, &verr) || verr.Target != tt.target {
						t.Fatalf("err = %v, want ValidationError for %s", err, tt.target)
					}
				}
				if _, gerr := store.Get(ctx, tt.key); tt.key != settings.DocumentStoreCollection && !errors.Is(gerr, settings.ErrNotFound) {
					t.Fatal("rejected edit was written")
				}
				return
			}
			if err != nil {
				t.Fatalf("Edit: %v", err)
			}
			got, gerr := store.Get(ctx, tt.key)
			if tt.want == "" {
				if !errors.Is(gerr, settings.ErrNotFound) {
					t.Fatalf("key still present: %q", got)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("stored %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEdit_UnknownKey(t *testing.T) {
	err := Edit(context.Background(), settings.NewMemoryStore(nil), "broker.qos", "1")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
}

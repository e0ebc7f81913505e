// Package settingstest holds the behavior every settings.Store backend must
// share, so each backend's tests can run it against a live instance.
package settingstest

import (
	"context"
	"errors"
	"testing"

	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Contract exercises s. The store must start empty.
func Contract(t *testing.T, s settings.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, settings.APIEnabled); !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	batch := []settings.Change{
		settings.SetBool(settings.APIEnabled, true),
		settings.Set(settings.APIBaseURIs, settings.EncodeURIList([]string{"https://a.example"})),
		settings.Set(settings.DocumentStoreCollection, "entries"),
	}
	for i := 0; i < 2; i++ {
		if err := s.Apply(ctx, batch); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}
	if v, err := s.Get(ctx, settings.APIEnabled); err != nil || v != "true" {
		t.Fatalf("Get(%s) = %q, %v", settings.APIEnabled, v, err)
	}
	if v, err := s.Get(ctx, settings.APIBaseURIs); err != nil || v != `["https://a.example"]` {
		t.Fatalf("Get(%s) = %q, %v", settings.APIBaseURIs, v, err)
	}

	if err := s.Apply(ctx, []settings.Change{settings.Unset(settings.DocumentStoreCollection)}); err != nil {
		t.Fatalf("Apply(unset): %v", err)
	}
	if _, err := s.Get(ctx, settings.DocumentStoreCollection); !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("Get after Unset error = %v, want ErrNotFound", err)
	}

	// Unsetting a missing key is not an error.
	if err := s.Apply(ctx, []settings.Change{settings.Unset(settings.DocumentStoreCollection)}); err != nil {
		t.Fatalf("Apply(unset missing): %v", err)
	}

	// Later changes in one batch win.
	if err := s.Apply(ctx, []settings.Change{
		settings.Set(settings.BrokerUsername, "a"),
		settings.Set(settings.BrokerUsername, "b"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v, _ := s.Get(ctx, settings.BrokerUsername); v != "b" {
		t.Fatalf("Get(%s) = %q, want b", settings.BrokerUsername, v)
	}

	if err := s.Apply(ctx, nil); err != nil {
		t.Fatalf("Apply(nil): %v", err)
	}
}

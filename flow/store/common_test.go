package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/dshills/bbflow/flow/store"
)

// storeFactories returns a constructor for every backend available in the
// current environment. MySQL is included only when TEST_MYSQL_DSN is set.
func storeFactories(t *testing.T) map[string]func(t *testing.T) store.Store {
	t.Helper()

	factories := map[string]func(t *testing.T) store.Store{
		"mem": func(t *testing.T) store.Store {
			return store.NewMemStore()
		},
		"sqlite": func(t *testing.T) store.Store {
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "requests.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			return s
		},
		"redis": func(t *testing.T) store.Store {
			server := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: server.Addr()})
			return store.NewRedisStore(client, store.WithKeyPrefix("test"))
		},
	}

	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		factories["mysql"] = func(t *testing.T) store.Store {
			s, err := store.NewMySQLStore(dsn)
			if err != nil {
				t.Fatalf("NewMySQLStore failed: %v", err)
			}
			return s
		}
	}
	return factories
}

// uniqueID keeps MySQL runs from colliding with leftovers of earlier runs.
func uniqueID(base string) string {
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano())
}

func TestStoreContract_Requests(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer func() { _ = s.Close() }()

			id := uniqueID("req")
			req := store.InfraActiveRequest{
				RequestID:         id,
				OriginalRequestID: "orig-1",
				RequestStatus:     "IN_PROGRESS",
				RequestAction:     "createInstance",
				RequestScope:      "service",
				ServiceInstanceID: "si-1",
				StartTime:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			}
			if err := s.SaveRequest(ctx, req); err != nil {
				t.Fatalf("SaveRequest failed: %v", err)
			}

			got, err := s.GetRequest(ctx, id)
			if err != nil {
				t.Fatalf("GetRequest failed: %v", err)
			}
			if diff := cmp.Diff(req, got); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}

			// Replacing keeps only the newest record.
			req.RequestStatus = "FAILED"
			if err := s.SaveRequest(ctx, req); err != nil {
				t.Fatalf("SaveRequest (replace) failed: %v", err)
			}
			got, err = s.GetRequest(ctx, id)
			if err != nil {
				t.Fatalf("GetRequest failed: %v", err)
			}
			if got.RequestStatus != "FAILED" {
				t.Errorf("expected status FAILED, got %q", got.RequestStatus)
			}

			_, err = s.GetRequest(ctx, uniqueID("missing"))
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			err = s.SaveRequest(ctx, store.InfraActiveRequest{})
			if !errors.Is(err, store.ErrMissingRequestID) {
				t.Errorf("expected ErrMissingRequestID, got %v", err)
			}
		})
	}
}

func TestStoreContract_UpdateResourceIDs(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer func() { _ = s.Close() }()

			id := uniqueID("req")
			if err := s.SaveRequest(ctx, store.InfraActiveRequest{RequestID: id, VnfID: "vnf-old"}); err != nil {
				t.Fatalf("SaveRequest failed: %v", err)
			}

			err := s.UpdateRequestResourceIDs(ctx, id, store.ResourceIDUpdate{VfModuleID: "vfm-1"})
			if err != nil {
				t.Fatalf("UpdateRequestResourceIDs failed: %v", err)
			}
			err = s.UpdateRequestResourceIDs(ctx, id, store.ResourceIDUpdate{NetworkID: "net-1"})
			if err != nil {
				t.Fatalf("UpdateRequestResourceIDs failed: %v", err)
			}

			got, err := s.GetRequest(ctx, id)
			if err != nil {
				t.Fatalf("GetRequest failed: %v", err)
			}
			if got.VnfID != "vnf-old" {
				t.Errorf("empty update field must not clear VnfID, got %q", got.VnfID)
			}
			if got.VfModuleID != "vfm-1" || got.NetworkID != "net-1" {
				t.Errorf("expected vfm-1/net-1, got %q/%q", got.VfModuleID, got.NetworkID)
			}

			err = s.UpdateRequestResourceIDs(ctx, uniqueID("missing"), store.ResourceIDUpdate{VnfID: "x"})
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreContract_ProcessingData(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer func() { _ = s.Close() }()

			id := uniqueID("so")
			entries := []store.ProcessingData{
				{SoRequestID: id, Name: "flowExecutionPath", Value: "[]", Tag: "BPMNExecutionData"},
				{SoRequestID: id, Name: "aLaCarte", Value: "true"},
			}
			for _, e := range entries {
				if err := s.SaveProcessingData(ctx, e); err != nil {
					t.Fatalf("SaveProcessingData failed: %v", err)
				}
			}

			got, err := s.GetProcessingData(ctx, id, "flowExecutionPath")
			if err != nil {
				t.Fatalf("GetProcessingData failed: %v", err)
			}
			if diff := cmp.Diff(entries[0], got); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}

			// Last writer wins for the same name.
			updated := entries[0]
			updated.Value = `[{"requestId":"r"}]`
			if err := s.SaveProcessingData(ctx, updated); err != nil {
				t.Fatalf("SaveProcessingData (replace) failed: %v", err)
			}

			list, err := s.ListProcessingData(ctx, id)
			if err != nil {
				t.Fatalf("ListProcessingData failed: %v", err)
			}
			want := []store.ProcessingData{entries[1], updated}
			if diff := cmp.Diff(want, list); diff != "" {
				t.Errorf("list mismatch (-want +got):\n%s", diff)
			}

			_, err = s.GetProcessingData(ctx, id, "nope")
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			empty, err := s.ListProcessingData(ctx, uniqueID("unknown"))
			if err != nil {
				t.Fatalf("ListProcessingData on unknown request failed: %v", err)
			}
			if len(empty) != 0 {
				t.Errorf("expected empty list, got %d entries", len(empty))
			}
		})
	}
}

func TestStoreContract_ConcurrentWrites(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer func() { _ = s.Close() }()

			id := uniqueID("so")
			const writers = 10

			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := range writers {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs <- s.SaveProcessingData(ctx, store.ProcessingData{
						SoRequestID: id,
						Name:        fmt.Sprintf("entry-%02d", i),
						Value:       fmt.Sprint(i),
					})
				}(i)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Errorf("concurrent SaveProcessingData failed: %v", err)
				}
			}

			list, err := s.ListProcessingData(ctx, id)
			if err != nil {
				t.Fatalf("ListProcessingData failed: %v", err)
			}
			if len(list) != writers {
				t.Errorf("expected %d entries, got %d", writers, len(list))
			}
		})
	}
}

func TestStoreContract_Closed(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("second Close should be a no-op, got %v", err)
			}

			_, err := s.GetRequest(ctx, "any")
			if !errors.Is(err, store.ErrClosed) {
				t.Errorf("expected ErrClosed from GetRequest, got %v", err)
			}
			err = s.SaveProcessingData(ctx, store.ProcessingData{SoRequestID: "x", Name: "y"})
			if !errors.Is(err, store.ErrClosed) {
				t.Errorf("expected ErrClosed from SaveProcessingData, got %v", err)
			}
		})
	}
}

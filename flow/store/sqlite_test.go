package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// TestSQLiteStore_Persistence verifies data survives closing and reopening the file.
func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if s.Path() != path {
		t.Errorf("expected Path() = %q, got %q", path, s.Path())
	}
	if err := s.SaveRequest(ctx, InfraActiveRequest{RequestID: "r1", OriginalRequestID: "r0"}); err != nil {
		t.Fatalf("SaveRequest failed: %v", err)
	}
	if err := s.SaveProcessingData(ctx, ProcessingData{SoRequestID: "r0", Name: "flowExecutionPath", Value: "[]"}); err != nil {
		t.Fatalf("SaveProcessingData failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	req, err := reopened.GetRequest(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRequest after reopen failed: %v", err)
	}
	if req.OriginalRequestID != "r0" {
		t.Errorf("expected OriginalRequestID = r0, got %q", req.OriginalRequestID)
	}
	pd, err := reopened.GetProcessingData(ctx, "r0", "flowExecutionPath")
	if err != nil {
		t.Fatalf("GetProcessingData after reopen failed: %v", err)
	}
	if pd.Value != "[]" {
		t.Errorf("expected Value = [], got %q", pd.Value)
	}
}

func TestSQLiteStore_InMemoryPing(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	_ = s.Close()
	if err := s.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

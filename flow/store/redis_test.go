package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/dshills/bbflow/flow/store"
)

func TestRedisStoreFromURL(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	server.RequireAuth("secret")

	s, err := store.NewRedisStoreFromURL(ctx,
		"redis://:secret@"+server.Addr()+"/0", store.WithKeyPrefix("url"))
	if err != nil {
		t.Fatalf("NewRedisStoreFromURL failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := s.SaveRequest(ctx, store.InfraActiveRequest{RequestID: "r1"}); err != nil {
		t.Fatalf("SaveRequest failed: %v", err)
	}
	if !server.Exists("url:request:r1") {
		t.Errorf("expected key url:request:r1 in redis, got %v", server.Keys())
	}
}

func TestRedisStoreFromURLErrors(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	server.RequireAuth("secret")

	tests := []struct {
		name string
		url  string
	}{
		{"bad_scheme", "http://" + server.Addr()},
		{"wrong_password", "redis://:nope@" + server.Addr() + "/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.NewRedisStoreFromURL(ctx, tt.url)
			if err == nil {
				_ = s.Close()
				t.Fatalf("expected error for %q", tt.url)
			}
		})
	}
}

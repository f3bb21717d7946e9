package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "memory with empty DataDir is valid",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "file with empty DataDir is valid at config level",
			config:  Config{Backend: "file", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "blank storage key rejected",
			config:  Config{Backend: "memory", StorageKey: "   "},
			wantErr: ErrStorageKeyFormat,
		},
		{
			name:    "redis without address rejected",
			config:  Config{Backend: "redis"},
			wantErr: ErrRedisAddrEmpty,
		},
		{
			name:    "redis with negative db rejected",
			config:  Config{Backend: "redis", Redis: RedisConfig{Addr: "localhost:6379", DB: -1}},
			wantErr: ErrRedisDBInvalid,
		},
		{
			name:    "valid redis config",
			config:  Config{Backend: "redis", Redis: RedisConfig{Addr: "localhost:6379", DB: 2}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigKey(t *testing.T) {
	if got := (Config{}).Key(); got != DefaultStorageKey {
		t.Errorf("Key() = %q, want %q", got, DefaultStorageKey)
	}
	if got := (Config{StorageKey: "@Shop:cart"}).Key(); got != "@Shop:cart" {
		t.Errorf("Key() = %q, want %q", got, "@Shop:cart")
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	if got := (RedisConfig{}).KeyPrefix(); got != DefaultRedisPrefix {
		t.Errorf("KeyPrefix() = %q, want %q", got, DefaultRedisPrefix)
	}
	if got := (RedisConfig{Prefix: "shop:"}).KeyPrefix(); got != "shop:" {
		t.Errorf("KeyPrefix() = %q, want %q", got, "shop:")
	}
}

// Package redis implements the Redis storage backend. Every key is written
// under a namespace prefix so Clear removes only this application's keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Connection settings applied on Attach.
const (
	pingAttempts = 5
	pingTimeout  = 3 * time.Second
	maxBackoff   = 5 * time.Second
	scanCount    = 100
)

// Backend implements types.Backend using Redis string keys.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *goredis.Client
	prefix   string

	// sleep is replaced in tests.
	sleep func(time.Duration)
}

// NewBackend creates a Redis backend. The backend is not attached; call
// Attach with a Config to connect.
func NewBackend() *Backend {
	return &Backend{sleep: time.Sleep}
}

// Attach connects to config.Redis.Addr and waits for the server to answer a
// PING, retrying with exponential backoff.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	if err := b.waitReady(client); err != nil {
		client.Close()
		return err
	}

	b.client = client
	b.prefix = config.Redis.KeyPrefix()
	b.attached = true
	return nil
}

func (b *Backend) waitReady(client *goredis.Client) error {
	var err error
	for i := 0; i < pingAttempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}
		if i == pingAttempts-1 {
			break
		}
		backoff := time.Duration(1<<i) * 200 * time.Millisecond
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		b.sleep(backoff)
	}
	return fmt.Errorf("connect to redis after %d attempts: %w", pingAttempts, err)
}

// Detach closes the client. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	b.attached = false
	return err
}

// Get returns the value stored under key.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrDetached
	}
	v, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET: %w", err)
	}
	return v, true, nil
}

// Set stores value under key with no expiry.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}
	if err := b.client.Set(ctx, b.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

// Clear deletes every key under the prefix.
func (b *Backend) Clear(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	iter := b.client.Scan(ctx, 0, matchPrefix(b.prefix), scanCount).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanCount {
			if err := b.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis DEL: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis SCAN: %w", err)
	}
	if len(batch) > 0 {
		if err := b.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis DEL: %w", err)
		}
	}
	return nil
}

// globEscaper escapes the characters SCAN MATCH treats as glob syntax.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// matchPrefix returns a SCAN MATCH pattern for every key starting with prefix.
func matchPrefix(prefix string) string {
	return globEscaper.Replace(prefix) + "*"
}

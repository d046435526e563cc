package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	backend "github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding the output mapping.
const DefaultKey = "automate:outputs"

// Outputs implements ports.OutputSource over a Redis hash.
// Each field holds a JSON value; fields that are not valid JSON are read as strings,
// so values written by other producers with HSET are still visible to conditions.
type Outputs struct {
	client *backend.Client
	key    string
}

// Option configures the Redis output store.
type Option func(*Outputs)

// WithKey sets the hash key.
func WithKey(key string) Option {
	return func(o *Outputs) {
		if key != "" {
			o.key = key
		}
	}
}

// New creates a Redis output mapping with options.
func New(address, password string, db int, opts ...Option) *Outputs {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis output mapping from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Outputs {
	o := &Outputs{
		client: client,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Key returns the hash key in use.
func (o *Outputs) Key() string { return o.key }

// OutputDict reads the whole hash.
func (o *Outputs) OutputDict(ctx context.Context) (map[string]any, error) {
	fields, err := o.client.HGetAll(ctx, o.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs from redis: %w", err)
	}

	out := make(map[string]any, len(fields))
	for name, raw := range fields {
		out[name] = decodeValue(raw)
	}
	return out, nil
}

// Set stores one value as JSON.
func (o *Outputs) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal output %q: %w", name, err)
	}
	if err := o.client.HSet(ctx, o.key, name, data).Err(); err != nil {
		return fmt.Errorf("failed to write output %q to redis: %w", name, err)
	}
	return nil
}

// Replace swaps the whole mapping atomically.
func (o *Outputs) Replace(ctx context.Context, values map[string]any) error {
	args := make([]any, 0, len(values)*2)
	for name, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal output %q: %w", name, err)
		}
		args = append(args, name, data)
	}

	_, err := o.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, o.key)
		if len(args) > 0 {
			pipe.HSet(ctx, o.key, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace outputs in redis: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (o *Outputs) Ping(ctx context.Context) error {
	return o.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (o *Outputs) Close() error {
	return o.client.Close()
}

// decodeValue keeps numbers as json.Number so large integers stay exact.
func decodeValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return raw
	}
	return v
}

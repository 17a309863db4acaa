// Package kv is the persistence port of the game economy: a flat key-value
// store holding JSON documents. Every backend (memory, Redis, PostgreSQL)
// implements Store; the economy never sees which one is in use.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns every key starting with prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
}

// GetJSON decodes the value under key into v. It reports false when the key
// does not exist.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// Instrument wraps s so every call is counted in kv_operations_total
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

type instrumented struct {
	next    Store
	backend string
}

func (i *instrumented) observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "miss"
	case err != nil:
		result = "error"
	}
	metrics.KVOps.WithLabelValues(i.backend, op, result).Inc()
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := i.next.Get(ctx, key)
	i.observe("get", err)
	return b, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	err := i.next.Set(ctx, key, value)
	i.observe("set", err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	i.observe("delete", err)
	return err
}

func (i *instrumented) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := i.next.List(ctx, prefix)
	i.observe("list", err)
	return keys, err
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

package interfaces

import "context"

// KeyValue is a durable local key-value store. Reads of absent keys return
// ("", nil); callers treat write failures as non-fatal.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

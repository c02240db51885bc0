// Package settings stores durable local flags for the client, such as the
// per-user verification acknowledgement and the biometric-enabled
// preference. Values survive process restarts.
package settings

import "context"

type Repository interface {
	// GetBool returns the stored value for key, or false if the key is absent.
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

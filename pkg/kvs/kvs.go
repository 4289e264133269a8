// Package kvs provides the embeddable facade over the storage engine: a
// small in-process handle that owns the engine and exposes Set/Get/Remove
// to callers that don't need the TCP server.
package kvs

import (
	"context"

	"github.com/nilotpal-labs/kvs/internal/engine"
	"github.com/nilotpal-labs/kvs/pkg/logger"
	"github.com/nilotpal-labs/kvs/pkg/options"
	"go.uber.org/zap"
)

// Instance is the primary entry point for interacting with the store,
// providing methods for setting, getting, and removing key-value pairs.
type Instance struct {
	engine  *engine.Engine     // The underlying storage engine handling read/write operations.
	options *options.Options   // Configuration options applied to this instance.
	log     *zap.SugaredLogger // Structured logger shared with the engine.
}

// NewInstance opens a store rooted at the configured data directory,
// replaying any existing segments before returning.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts, log: log}, nil
}

// Set stores value under key. If the key already exists, its value is
// overwritten.
func (i *Instance) Set(ctx context.Context, key, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value associated with key. found is false when the key
// has no live entry.
func (i *Instance) Get(ctx context.Context, key string) (value string, found bool, err error) {
	return i.engine.Get(key)
}

// Remove deletes key from the store.
func (i *Instance) Remove(ctx context.Context, key string) error {
	return i.engine.Remove(key)
}

// Close shuts down the instance, flushing the active segment and releasing
// every resource the engine holds.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}

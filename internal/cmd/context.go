package cmd

import (
	"context"

	"github.com/jmgilman/crossfit/internal/catalog"
	"github.com/jmgilman/crossfit/internal/config"
)

type contextKey string

const (
	configKey contextKey = "config"
	loaderKey contextKey = "loader"
	storeKey  contextKey = "store"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithStore adds the run history store to the context.
func WithStore(ctx context.Context, store catalog.Store) context.Context {
	return context.WithValue(ctx, storeKey, store)
}

// StoreFromContext retrieves the run history store from context.
func StoreFromContext(ctx context.Context) catalog.Store {
	store, ok := ctx.Value(storeKey).(catalog.Store)
	if !ok {
		return nil
	}
	return store
}

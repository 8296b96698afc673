package main

import (
	"context"
	"errors"

	"github.com/indigo-web/h1codec/config"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, configKey{}, cfg)
}

func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}

	return cfg, nil
}

package main

import (
	"context"
	"errors"
	"io"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/query"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/storage"
)

var errNotLoggedIn = errors.New("not logged in, run: imgctl login <email>")

// withStore opens the persisted session and hands fn a store client that
// carries it.
func withStore(ctx context.Context, cfg *configuration.ClientConfig, fn func(*backend.Client) error) error {
	sessions, err := storage.Open(ctx, storage.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Profile:       cfg.Profile,
		Path:          cfg.SessionFile,
	})
	if err != nil {
		return err
	}
	if closer, ok := sessions.(io.Closer); ok {
		defer closer.Close()
	}

	auth := backend.NewAuthStore(sessions)
	if err := auth.Load(ctx); err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.BackendURL, backend.WithAuthStore(auth))
	if err != nil {
		return err
	}
	return fn(client)
}

// withUser is withStore for commands that need a logged in user.
func withUser(ctx context.Context, cfg *configuration.ClientConfig, fn func(*backend.Client, string) error) error {
	return withStore(ctx, cfg, func(client *backend.Client) error {
		username := query.CurrentUsername(client)
		if username == "" {
			return errNotLoggedIn
		}
		return fn(client, username)
	})
}

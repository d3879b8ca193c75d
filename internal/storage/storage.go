package storage

import (
	"context"
	"errors"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

// SessionStore persists the store client's authentication session so it
// survives between process runs.
type SessionStore interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Clear(ctx context.Context) error
}

// Options selects a SessionStore implementation.
type Options struct {
	// RedisAddr, when set, selects RedisStorage.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Profile namespaces the redis key.
	Profile string
	// Path of the JSON session file used otherwise.
	Path string
}

// Open returns the SessionStore described by opts.
func Open(ctx context.Context, opts Options) (SessionStore, error) {
	if opts.RedisAddr != "" {
		return NewRedisStorage(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.Profile)
	}
	if opts.Path == "" {
		return nil, errors.New("storage: no session file path configured")
	}
	return NewLocalStorage(opts.Path), nil
}

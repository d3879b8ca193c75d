package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// CreateUser signs up a new user on the free plan.
func CreateUser(ctx context.Context, store *backend.Client, user models.NewUser) (models.User, error) {
	if user.Password != user.PasswordConfirm {
		return models.User{}, ErrPasswordMismatch
	}
	user.AccountType = models.AccountTypeFree

	record, err := store.Collection(models.UsersCollection).Create(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return decodeUser(record)
}

// LoginUser authenticates with email (or username) and password and keeps
// the session in the store's auth store.
func LoginUser(ctx context.Context, store *backend.Client, identity, password string) (models.User, error) {
	result, err := store.Collection(models.UsersCollection).AuthWithPassword(ctx, identity, password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to log in: %w", err)
	}
	return decodeUser(result.Record)
}

// ChangeUserPassword updates the password of userID. The store requires the
// current password.
func ChangeUserPassword(ctx context.Context, store *backend.Client, userID, oldPassword, password, passwordConfirm string) (models.User, error) {
	if password != passwordConfirm {
		return models.User{}, ErrPasswordMismatch
	}
	record, err := store.Collection(models.UsersCollection).Update(ctx, userID, map[string]string{
		"oldPassword":     oldPassword,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to change password: %w", err)
	}
	return decodeUser(record)
}

// LogoutUser drops the current session.
func LogoutUser(ctx context.Context, store *backend.Client) error {
	return store.AuthStore().Clear(ctx)
}

func decodeUser(record backend.Record) (models.User, error) {
	var user models.User
	if err := record.Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

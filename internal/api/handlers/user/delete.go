package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/sanitize"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/command"
	"github.com/nats-io/nats.go"
)

var errMissingUsername = errors.New("missing username")

// PrefixDeleter removes stored objects by key prefix.
type PrefixDeleter interface {
	DeleteObjectsByPrefix(ctx context.Context, prefix string) (int, error)
}

// Handler purges everything a deleted user uploaded.
type Handler struct {
	Deps       handlers.Deps
	Quarantine PrefixDeleter
}

func NewHandler(deps handlers.Deps, quarantine PrefixDeleter) *Handler {
	return &Handler{Deps: deps, Quarantine: quarantine}
}

func (h *Handler) HandleUserDeleted(msg *nats.Msg) {
	var payload models.UserDeletedEvent
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] users.deleted: invalid JSON: %v", err)
		term(msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := h.PurgeUser(ctx, payload); err != nil {
		log.Printf("[NATS] users.deleted %s: %v", payload.UserID, err)
		if errors.Is(err, errMissingUsername) {
			term(msg)
			return
		}
		nak(msg)
		return
	}
	ack(msg)
}

// PurgeUser deletes the user's records from the store, their scan verdicts
// and any quarantined copies.
func (h *Handler) PurgeUser(ctx context.Context, evt models.UserDeletedEvent) error {
	if evt.Username == "" {
		return errMissingUsername
	}
	author := sanitize.String(evt.Username)
	log.Printf("[NATS] Processing users.deleted for %s (%s)", author, evt.UserID)

	store, err := h.Deps.ServiceStore(ctx)
	if err != nil {
		return err
	}

	deleted, err := command.DeleteAllFilesForAuthor(ctx, store, evt.Username)
	if err != nil {
		return err
	}
	log.Printf("[NATS] Deleted %d file records", deleted)

	scans, err := command.DeleteScansForAuthor(ctx, author)
	switch {
	case errors.Is(err, command.ErrLedgerUnavailable):
		log.Printf("[NATS] scan ledger not available, skipping")
	case err != nil:
		return fmt.Errorf("delete scans: %w", err)
	default:
		log.Printf("[NATS] Deleted %d scan records", scans)
	}

	if h.Quarantine != nil {
		if _, err := h.Quarantine.DeleteObjectsByPrefix(ctx, author+"/"); err != nil {
			return fmt.Errorf("delete quarantined objects: %w", err)
		}
	}

	log.Printf("[NATS] Successfully cleaned up user %s", author)
	return nil
}

func ack(msg *nats.Msg) {
	if err := msg.Ack(); err != nil {
		log.Printf("[NATS] Failed to ack message: %v", err)
	}
}

func nak(msg *nats.Msg) {
	if err := msg.Nak(); err != nil {
		log.Printf("[NATS] Failed to nak message: %v", err)
	}
}

func term(msg *nats.Msg) {
	if err := msg.Term(); err != nil {
		log.Printf("[NATS] Failed to term message: %v", err)
	}
}

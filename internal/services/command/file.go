package command

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/sanitize"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/query"
)

// DeleteImage removes the file record fileID. It reports false on any
// failure, including an unknown id.
func DeleteImage(ctx context.Context, store *backend.Client, fileID string) bool {
	id := sanitize.String(strings.TrimSpace(fileID))
	if id == "" {
		return false
	}

	if err := store.Collection(models.FilesCollection).Delete(ctx, id); err != nil {
		log.Printf("[DELETE] failed to delete file %s: %v", id, err)
		return false
	}
	log.Printf("[DELETE] file %s deleted", id)
	return true
}

// DeleteAllFilesForAuthor removes every record uploaded by username and
// returns how many were deleted. It stops at the first failed delete.
func DeleteAllFilesForAuthor(ctx context.Context, store *backend.Client, username string) (int, error) {
	files, err := query.ListFiles(ctx, store, username, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list files for %q: %w", username, err)
	}

	deleted := 0
	for _, f := range files {
		if err := store.Collection(models.FilesCollection).Delete(ctx, f.ID); err != nil {
			if backend.IsNotFound(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete file %s: %w", f.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

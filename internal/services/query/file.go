package query

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/sanitize"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/units"
)

const (
	authorFilter = "author = {:author}"
	searchFilter = "author = {:author} && (image ~ {:term} || fileSize ~ {:term})"
	newestFirst  = "-created"
)

// GetFiles returns every image uploaded by username, newest first. Failures
// are logged and yield an empty list.
func GetFiles(ctx context.Context, store *backend.Client, username string) []models.FileRecord {
	files, err := ListFiles(ctx, store, username, "")
	if err != nil {
		log.Printf("[QUERY] failed to list files for %q: %v", username, err)
		return []models.FileRecord{}
	}
	return files
}

// SearchFiles narrows GetFiles to records whose image name or size text
// contains term. A blank term behaves exactly like GetFiles.
func SearchFiles(ctx context.Context, store *backend.Client, username, term string) []models.FileRecord {
	files, err := ListFiles(ctx, store, username, term)
	if err != nil {
		log.Printf("[QUERY] failed to search files for %q: %v", username, err)
		return []models.FileRecord{}
	}
	return files
}

// ListFiles is the strict form of SearchFiles: it reports query failures
// instead of returning an empty list.
func ListFiles(ctx context.Context, store *backend.Client, username, term string) ([]models.FileRecord, error) {
	opts := ListOptions(username, term)

	records, err := store.Collection(models.FilesCollection).GetFullList(ctx, opts)
	if err != nil {
		return nil, err
	}

	files := make([]models.FileRecord, 0, len(records))
	for _, record := range records {
		var file models.FileRecord
		if err := record.Decode(&file); err != nil {
			log.Printf("[QUERY] skipping undecodable record %s: %v", record.ID(), err)
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

// ListOptions builds the list query for username's files. Stored authors
// are sanitized, so the compared value is sanitized as well.
func ListOptions(username, term string) backend.ListOptions {
	params := map[string]any{"author": sanitize.String(username)}
	expr := authorFilter

	if term = strings.TrimSpace(term); term != "" {
		params["term"] = sanitize.String(term)
		expr = searchFilter
	}

	return backend.ListOptions{
		Filter: backend.Filter(expr, params),
		Sort:   newestFirst,
	}
}

// TotalFileSize sums the display sizes of files.
func TotalFileSize(files []models.FileRecord) string {
	sizes := make([]string, len(files))
	for i, f := range files {
		sizes[i] = f.FileSize
	}
	return units.TotalSize(sizes)
}

// FileUploadCount renders the number of files.
func FileUploadCount(files []models.FileRecord) string {
	return strconv.Itoa(len(files))
}

package query

import (
	"context"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/infrastructure"
)

// GetScanRecord looks up the verdict of fileID uploaded by author.
func GetScanRecord(ctx context.Context, fileID, author string) (models.ScanRecord, bool) {
	pg := infrastructure.GetPostgresForAuthor(author)
	if pg == nil {
		return models.ScanRecord{}, false
	}
	return pg.GetScanRecord(ctx, fileID)
}

// GetScanStats returns per-shard ledger counters.
func GetScanStats(ctx context.Context) map[string]any {
	return infrastructure.GetStats(ctx)
}

package command

import (
	"context"
	"errors"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/infrastructure"
)

var ErrLedgerUnavailable = errors.New("scan ledger not initialized")

// RecordScan stores a verdict on the shard of its author.
func RecordScan(ctx context.Context, rec models.ScanRecord) error {
	pg := infrastructure.GetPostgresForAuthor(rec.Author)
	if pg == nil {
		return ErrLedgerUnavailable
	}
	return pg.SaveScanRecord(ctx, rec)
}

// DeleteScansForAuthor drops every verdict of author.
func DeleteScansForAuthor(ctx context.Context, author string) (int, error) {
	pg := infrastructure.GetPostgresForAuthor(author)
	if pg == nil {
		return 0, ErrLedgerUnavailable
	}
	return pg.DeleteScansForAuthor(ctx, author)
}

package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

func (p *PostgresStorage) createTables(ctx context.Context) error {
	query := `
  CREATE TABLE IF NOT EXISTS file_scans (
      file_id VARCHAR(64) PRIMARY KEY,
      author VARCHAR(255) NOT NULL,
      image VARCHAR(500) NOT NULL,
      status VARCHAR(20) NOT NULL,
      signature VARCHAR(255),
      quarantined VARCHAR(500),
      scanned_at TIMESTAMPTZ NOT NULL,
      created_at TIMESTAMPTZ DEFAULT NOW(),
      updated_at TIMESTAMPTZ DEFAULT NOW()
  );
  CREATE INDEX IF NOT EXISTS idx_file_scans_author ON file_scans(author);
  CREATE INDEX IF NOT EXISTS idx_file_scans_status ON file_scans(status);
  `
	_, err := p.Db.ExecContext(ctx, query)
	return err
}

// SaveScanRecord inserts or replaces the verdict for a file.
func (p *PostgresStorage) SaveScanRecord(ctx context.Context, rec models.ScanRecord) error {
	query := `
  INSERT INTO file_scans (file_id, author, image, status, signature, quarantined, scanned_at)
  VALUES ($1, $2, $3, $4, $5, $6, $7)
  ON CONFLICT (file_id) DO UPDATE SET
      author = EXCLUDED.author,
      image = EXCLUDED.image,
      status = EXCLUDED.status,
      signature = EXCLUDED.signature,
      quarantined = EXCLUDED.quarantined,
      scanned_at = EXCLUDED.scanned_at,
      updated_at = NOW()
  `
	_, err := p.Db.ExecContext(ctx, query,
		rec.FileID,
		rec.Author,
		rec.Image,
		rec.Status,
		nullString(rec.Signature),
		nullString(rec.Quarantined),
		rec.ScannedAt,
	)
	return err
}

// GetScanRecord returns the verdict for fileID.
func (p *PostgresStorage) GetScanRecord(ctx context.Context, fileID string) (models.ScanRecord, bool) {
	query := `
  SELECT file_id, author, image, status, signature, quarantined, scanned_at
  FROM file_scans WHERE file_id = $1
  `

	var (
		rec         models.ScanRecord
		signature   sql.NullString
		quarantined sql.NullString
	)
	err := p.Db.QueryRowContext(ctx, query, fileID).Scan(
		&rec.FileID,
		&rec.Author,
		&rec.Image,
		&rec.Status,
		&signature,
		&quarantined,
		&rec.ScannedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[DB] error getting scan record %s: %v", fileID, err)
		}
		return models.ScanRecord{}, false
	}

	rec.Signature = signature.String
	rec.Quarantined = quarantined.String
	return rec, true
}

// DeleteScansForAuthor removes every verdict of author.
func (p *PostgresStorage) DeleteScansForAuthor(ctx context.Context, author string) (int, error) {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM file_scans WHERE author = $1`, author)
	if err != nil {
		return 0, err
	}
	count, _ := res.RowsAffected()
	return int(count), nil
}

func (p *PostgresStorage) getStats(ctx context.Context) map[string]any {
	var (
		total, infected int
		latest          sql.NullTime
	)

	err := p.Db.QueryRowContext(ctx, `
      SELECT COUNT(*),
             COUNT(*) FILTER (WHERE status = 'infected'),
             MAX(scanned_at)
      FROM file_scans
  `).Scan(&total, &infected, &latest)
	if err != nil {
		log.Printf("[DB] error getting stats: %v", err)
		return map[string]any{}
	}

	stats := map[string]any{
		"total_scans":    total,
		"infected_files": infected,
	}
	if latest.Valid {
		stats["latest_scan"] = latest.Time.UTC().Format(time.RFC3339)
	}
	return stats
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/util"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/upload"
	"github.com/nats-io/nats.go"
)

const (
	scanTimeout = 2 * time.Minute
	// Uploads are capped client side; leave room for multipart overhead.
	maxScanBytes = 4 * upload.MaxFileSize
)

// Quarantiner keeps a copy of an infected file out of the public store.
type Quarantiner interface {
	Quarantine(ctx context.Context, author, fileID, image string, r io.Reader, size int64, contentType string) (string, error)
}

// FileEventHandler scans every uploaded image and removes infected ones.
type FileEventHandler struct {
	Deps       Deps
	Scanner    util.VirusScanner
	Quarantine Quarantiner
	RecordScan func(ctx context.Context, rec models.ScanRecord) error
	now        func() time.Time
}

func NewFileEventHandler(deps Deps, scanner util.VirusScanner, quarantine Quarantiner) *FileEventHandler {
	return &FileEventHandler{
		Deps:       deps,
		Scanner:    scanner,
		Quarantine: quarantine,
		RecordScan: command.RecordScan,
		now:        time.Now,
	}
}

func (h *FileEventHandler) HandleFileUploaded(msg *nats.Msg) {
	log.Println("[NATS] Received files.uploaded")

	var payload models.FileUploadedEvent
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.FileID == "" || payload.Image == "" {
		log.Printf("[NATS] files.uploaded: invalid payload: %v", err)
		term(msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if _, err := h.ProcessUpload(ctx, payload); err != nil {
		log.Printf("[SCAN] %s: %v", payload.FileID, err)
		nak(msg)
		return
	}
	ack(msg)
}

// ProcessUpload scans one uploaded file and records the verdict. A file that
// is already gone from the store is not an error.
func (h *FileEventHandler) ProcessUpload(ctx context.Context, evt models.FileUploadedEvent) (models.ScanRecord, error) {
	store, err := h.Deps.ServiceStore(ctx)
	if err != nil {
		return models.ScanRecord{}, err
	}

	collection := evt.Collection
	if collection == "" {
		collection = h.Deps.Config.Backend.ImageCollection
	}

	resp, err := store.GetFile(ctx, collection, evt.FileID, evt.Image, "image/*,application/octet-stream")
	if err != nil {
		if backend.IsNotFound(err) {
			log.Printf("[SCAN] %s no longer exists, skipping", evt.FileID)
			return models.ScanRecord{}, nil
		}
		return models.ScanRecord{}, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScanBytes+1))
	if err != nil {
		return models.ScanRecord{}, fmt.Errorf("read file: %w", err)
	}

	rec := models.ScanRecord{
		FileID:    evt.FileID,
		Author:    evt.Author,
		Image:     evt.Image,
		Status:    models.ScanStatusClean,
		ScannedAt: h.now().UTC(),
	}

	// A file that cannot be scanned in full is never reported clean.
	if len(data) > maxScanBytes {
		rec.Status = models.ScanStatusOversized
		log.Printf("[SCAN] %s exceeds %d bytes, removing unscanned", evt.FileID, maxScanBytes)
		if err := store.Collection(models.FilesCollection).Delete(ctx, evt.FileID); err != nil && !backend.IsNotFound(err) {
			return rec, fmt.Errorf("delete oversized file: %w", err)
		}
		return rec, h.record(ctx, rec)
	}

	verdict, err := h.Scanner.Scan(ctx, bytes.NewReader(data))
	if err != nil {
		return models.ScanRecord{}, err
	}

	if verdict.Infected {
		rec.Status = models.ScanStatusInfected
		rec.Signature = verdict.Signature
		log.Printf("[SCAN] virus detected in %s: %s", evt.FileID, verdict.Signature)

		if h.Quarantine != nil {
			name, err := h.Quarantine.Quarantine(ctx, evt.Author, evt.FileID, evt.Image,
				bytes.NewReader(data), int64(len(data)), resp.Header.Get("Content-Type"))
			if err != nil {
				return rec, err
			}
			rec.Quarantined = name
		}

		if err := store.Collection(models.FilesCollection).Delete(ctx, evt.FileID); err != nil && !backend.IsNotFound(err) {
			return rec, fmt.Errorf("delete infected file: %w", err)
		}
	}

	if err := h.record(ctx, rec); err != nil {
		return rec, err
	}

	log.Printf("[SCAN] finished %s: %s", evt.FileID, rec.Status)
	return rec, nil
}

func (h *FileEventHandler) record(ctx context.Context, rec models.ScanRecord) error {
	if h.RecordScan == nil {
		return nil
	}
	if err := h.RecordScan(ctx, rec); err != nil {
		if !errors.Is(err, command.ErrLedgerUnavailable) {
			return fmt.Errorf("record scan: %w", err)
		}
		log.Printf("[SCAN] ledger unavailable, verdict for %s not stored", rec.FileID)
	}
	return nil
}

func ack(msg *nats.Msg) {
	if err := msg.Ack(); err != nil {
		log.Printf("[NATS] Failed to ack message: %v", err)
	}
}

// nak asks for redelivery.
func nak(msg *nats.Msg) {
	if err := msg.Nak(); err != nil {
		log.Printf("[NATS] Failed to nak message: %v", err)
	}
}

// term drops a message that can never be processed.
func term(msg *nats.Msg) {
	if err := msg.Term(); err != nil {
		log.Printf("[NATS] Failed to term message: %v", err)
	}
}

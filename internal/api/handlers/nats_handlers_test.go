package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/util"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	verdict util.Verdict
	err     error
	seen    []byte
}

func (s *fakeScanner) Scan(_ context.Context, r io.Reader) (util.Verdict, error) {
	s.seen, _ = io.ReadAll(r)
	return s.verdict, s.err
}

type fakeQuarantine struct {
	objects map[string][]byte
}

func (q *fakeQuarantine) Quarantine(_ context.Context, author, fileID, image string, r io.Reader, _ int64, _ string) (string, error) {
	data, _ := io.ReadAll(r)
	name := author + "/" + fileID + "/" + image
	q.objects[name] = data
	return name, nil
}

type fileStore struct {
	mu      sync.Mutex
	missing bool
	body    []byte
	deleted []string
	auth    []string
}

func (s *fileStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/files/"):
		if s.missing {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":404,"message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if s.body != nil {
			_, _ = w.Write(s.body)
			return
		}
		_, _ = w.Write([]byte("image-bytes"))
	case r.Method == http.MethodDelete:
		s.deleted = append(s.deleted, strings.TrimPrefix(r.URL.Path, "/api/collections/files/records/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newScanHandler(t *testing.T, store *fileStore, scanner *fakeScanner, q Quarantiner) (*FileEventHandler, *[]models.ScanRecord) {
	t.Helper()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	t.Setenv(configuration.BackendURLEnv, srv.URL)

	cfg := &configuration.Config{Backend: configuration.BackendConfig{ImageCollection: "files"}}
	h := NewFileEventHandler(Deps{Config: cfg}, scanner, q)

	var recorded []models.ScanRecord
	h.RecordScan = func(_ context.Context, rec models.ScanRecord) error {
		recorded = append(recorded, rec)
		return nil
	}
	h.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return h, &recorded
}

func uploaded() models.FileUploadedEvent {
	return models.FileUploadedEvent{FileID: "rec1", Collection: "c1", Image: "cat.png", Author: "bob"}
}

func TestProcessUploadClean(t *testing.T) {
	store := &fileStore{}
	scanner := &fakeScanner{}
	h, recorded := newScanHandler(t, store, scanner, nil)

	rec, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusClean, rec.Status)
	assert.Equal(t, "image-bytes", string(scanner.seen))
	assert.Empty(t, store.deleted)
	require.Len(t, *recorded, 1)
	assert.Equal(t, "bob", (*recorded)[0].Author)
}

func TestProcessUploadInfected(t *testing.T) {
	store := &fileStore{}
	q := &fakeQuarantine{objects: map[string][]byte{}}
	h, recorded := newScanHandler(t, store, &fakeScanner{verdict: util.Verdict{Infected: true, Signature: "Eicar"}}, q)

	rec, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusInfected, rec.Status)
	assert.Equal(t, "Eicar", rec.Signature)
	assert.Equal(t, "bob/rec1/cat.png", rec.Quarantined)
	assert.Equal(t, []byte("image-bytes"), q.objects["bob/rec1/cat.png"])
	assert.Equal(t, []string{"rec1"}, store.deleted)
	require.Len(t, *recorded, 1)
}

func TestProcessUploadOversizedFile(t *testing.T) {
	store := &fileStore{body: make([]byte, maxScanBytes+10)}
	scanner := &fakeScanner{}
	h, recorded := newScanHandler(t, store, scanner, nil)

	rec, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusOversized, rec.Status)
	assert.Nil(t, scanner.seen, "a truncated file must not be scanned")
	assert.Equal(t, []string{"rec1"}, store.deleted)
	require.Len(t, *recorded, 1)
	assert.Equal(t, models.ScanStatusOversized, (*recorded)[0].Status)
}

func TestProcessUploadScansFileAtLimit(t *testing.T) {
	store := &fileStore{body: make([]byte, maxScanBytes)}
	scanner := &fakeScanner{}
	h, _ := newScanHandler(t, store, scanner, nil)

	rec, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusClean, rec.Status)
	assert.Len(t, scanner.seen, maxScanBytes)
	assert.Empty(t, store.deleted)
}

func TestProcessUploadMissingFile(t *testing.T) {
	store := &fileStore{missing: true}
	scanner := &fakeScanner{}
	h, recorded := newScanHandler(t, store, scanner, nil)

	_, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	assert.Nil(t, scanner.seen)
	assert.Empty(t, *recorded)
}

func TestProcessUploadScanError(t *testing.T) {
	h, recorded := newScanHandler(t, &fileStore{}, &fakeScanner{err: util.ErrScanFailed}, nil)

	_, err := h.ProcessUpload(context.Background(), uploaded())
	assert.ErrorIs(t, err, util.ErrScanFailed)
	assert.Empty(t, *recorded)
}

func TestProcessUploadUsesServiceToken(t *testing.T) {
	store := &fileStore{}
	h, _ := newScanHandler(t, store, &fakeScanner{}, nil)
	// A token without exp is accepted by the auth store.
	h.Deps.Config.Backend.ServiceToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJpZCI6InN2YyJ9.c2ln"

	_, err := h.ProcessUpload(context.Background(), uploaded())
	require.NoError(t, err)
	require.NotEmpty(t, store.auth)
	assert.Equal(t, h.Deps.Config.Backend.ServiceToken, store.auth[0])
}

func TestProcessUploadRecordFailure(t *testing.T) {
	h, _ := newScanHandler(t, &fileStore{}, &fakeScanner{}, nil)
	h.RecordScan = func(context.Context, models.ScanRecord) error { return errors.New("db down") }

	_, err := h.ProcessUpload(context.Background(), uploaded())
	assert.Error(t, err)
}

func TestHandleFileUploadedInvalidPayload(t *testing.T) {
	scanner := &fakeScanner{}
	h, recorded := newScanHandler(t, &fileStore{}, scanner, nil)

	h.HandleFileUploaded(&nats.Msg{Data: []byte("not json")})
	data, _ := json.Marshal(models.FileUploadedEvent{FileID: "rec1"})
	h.HandleFileUploaded(&nats.Msg{Data: data})

	assert.Nil(t, scanner.seen)
	assert.Empty(t, *recorded)
}

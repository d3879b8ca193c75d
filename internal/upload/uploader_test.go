package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayRecorder struct {
	mu      sync.Mutex
	calls   int32
	authors []string
	sizes   []string
	names   []string
	types   []string
	tokens  []string
	status  func(name string) int
}

func (rr *relayRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&rr.calls, 1)
	if r.URL.Path != RelayPath || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile(FieldImage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, _ = io.Copy(io.Discard, file)
	_ = file.Close()

	rr.mu.Lock()
	rr.authors = append(rr.authors, r.FormValue(FieldAuthor))
	rr.sizes = append(rr.sizes, r.FormValue(FieldFileSize))
	rr.names = append(rr.names, header.Filename)
	rr.types = append(rr.types, header.Header.Get("Content-Type"))
	rr.tokens = append(rr.tokens, r.Header.Get(CSRFHeader))
	rr.mu.Unlock()

	status := http.StatusOK
	if rr.status != nil {
		status = rr.status(header.Filename)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":true}`))
}

func newTestUploader(t *testing.T, h http.Handler) (*Uploader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := NewUploader(srv.URL, WithTokenSource(StaticToken("tok-1")))
	require.NoError(t, err)
	return u, srv
}

func png(name string, size int) File {
	return File{Name: name, ContentType: "image/png", Data: bytes.Repeat([]byte{0x89}, size)}
}

func TestUploadFilesRejectsWholeBatchBeforeNetwork(t *testing.T) {
	rec := &relayRecorder{}
	u, _ := newTestUploader(t, rec)

	files := []File{
		png("a.png", 10),
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		png("b.png", 10),
	}
	err := u.UploadFiles(context.Background(), files, "bob", nil)

	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Zero(t, atomic.LoadInt32(&rec.calls))
}

func TestUploadFileSizeLimit(t *testing.T) {
	rec := &relayRecorder{}
	u, _ := newTestUploader(t, rec)

	err := u.UploadFile(context.Background(), png("exact.png", MaxFileSize), "bob", nil)
	require.NoError(t, err)

	err = u.UploadFile(context.Background(), png("over.png", MaxFileSize+1), "bob", nil)
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "5 MB")
	assert.EqualValues(t, 1, atomic.LoadInt32(&rec.calls))
}

func TestUploadFileSendsForm(t *testing.T) {
	rec := &relayRecorder{}
	u, _ := newTestUploader(t, rec)

	f := File{Name: `cat "one".gif`, ContentType: "image/gif", Data: bytes.Repeat([]byte("G"), 1536)}
	require.NoError(t, u.UploadFile(context.Background(), f, `<bob>`, nil))

	require.Len(t, rec.authors, 1)
	assert.Equal(t, "&lt;bob&gt;", rec.authors[0])
	assert.Equal(t, "1.5 KB", rec.sizes[0])
	assert.Equal(t, `cat "one".gif`, rec.names[0])
	assert.Equal(t, "image/gif", rec.types[0])
	assert.Equal(t, "tok-1", rec.tokens[0])
}

func TestUploadFileProgressIsMonotonicAndEndsAt100(t *testing.T) {
	rec := &relayRecorder{}
	u, _ := newTestUploader(t, rec)

	var mu sync.Mutex
	var seen []int
	err := u.UploadFile(context.Background(), png("big.png", 2*1024*1024), "bob", func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p.Percent)
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.GreaterOrEqual(t, seen[0], 0)
}

func TestUploadFileFailures(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError, http.StatusCreated} {
		rec := &relayRecorder{status: func(string) int { return status }}
		u, _ := newTestUploader(t, rec)

		err := u.UploadFile(context.Background(), png("a.png", 10), "bob", nil)
		require.ErrorIs(t, err, ErrUploadFailed, "status %d", status)
		assert.Equal(t, "upload failed: a.png", err.Error())
	}
}

func TestUploadFileTransportError(t *testing.T) {
	u, srv := newTestUploader(t, &relayRecorder{})
	srv.Close()

	err := u.UploadFile(context.Background(), png("a.png", 10), "bob", nil)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadFilesConcurrentFirstFailure(t *testing.T) {
	rec := &relayRecorder{status: func(name string) int {
		if name == "bad.png" {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	}}
	u, _ := newTestUploader(t, rec)

	files := []File{png("a.png", 100), png("bad.png", 100), png("c.png", 100)}
	var mu sync.Mutex
	final := map[string]int{}
	err := u.UploadFiles(context.Background(), files, "bob", func(p Progress) {
		mu.Lock()
		final[p.File] = p.Percent
		mu.Unlock()
	})

	require.ErrorIs(t, err, ErrUploadFailed)
	assert.EqualValues(t, 3, atomic.LoadInt32(&rec.calls), "every transfer runs to completion")
	assert.Equal(t, 100, final["a.png"])
	assert.Equal(t, 100, final["c.png"])
}

func TestUploadFilesAllSucceed(t *testing.T) {
	rec := &relayRecorder{}
	u, _ := newTestUploader(t, rec)

	var files []File
	for i := 0; i < 5; i++ {
		files = append(files, png(fmt.Sprintf("f%d.png", i), 1000+i))
	}
	require.NoError(t, u.UploadFiles(context.Background(), files, "bob", nil))
	assert.EqualValues(t, 5, atomic.LoadInt32(&rec.calls))
}

type countingTokens struct{ fetches int32 }

func (c *countingTokens) Token(context.Context) (string, error) {
	n := atomic.AddInt32(&c.fetches, 1)
	return fmt.Sprintf("tok-%d", n), nil
}

func TestUploadFilesFetchesTokenOncePerBatch(t *testing.T) {
	rec := &relayRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	tokens := &countingTokens{}
	u, err := NewUploader(srv.URL, WithTokenSource(tokens))
	require.NoError(t, err)

	files := []File{png("a.png", 10), png("b.png", 20), png("c.png", 30), png("d.png", 40)}
	require.NoError(t, u.UploadFiles(context.Background(), files, "bob", nil))

	assert.EqualValues(t, 1, atomic.LoadInt32(&tokens.fetches))
	assert.Equal(t, []string{"tok-1", "tok-1", "tok-1", "tok-1"}, rec.tokens)
}

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) { return "", errors.New("no page") }

func TestUploadFileSendsEmptyTokenWhenSourceFails(t *testing.T) {
	rec := &relayRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	u, err := NewUploader(srv.URL, WithTokenSource(failingTokens{}))
	require.NoError(t, err)
	require.NoError(t, u.UploadFile(context.Background(), png("a.png", 1), "bob", nil))
	assert.Equal(t, []string{""}, rec.tokens)
}

func TestMetaTokenSourceReadsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<!doctype html><html><head>
<meta charset="utf-8"><meta name="CSRF-Token" content="abc-123"></head><body></body></html>`)
	}))
	defer srv.Close()

	tok, err := MetaTokenSource{PageURL: srv.URL}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", tok)
}

func TestMetaContentMissing(t *testing.T) {
	tok, err := metaContent(strings.NewReader("<html><head></head></html>"), "csrf-token")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestNewUploaderRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host"} {
		_, err := NewUploader(raw)
		assert.Error(t, err, raw)
	}
}

func TestProgressChan(t *testing.T) {
	ch := make(chan Progress, 1)
	ProgressChan(ch)(Progress{File: "a", Percent: 40})
	assert.Equal(t, Progress{File: "a", Percent: 40}, <-ch)
}

func TestProxyImagePath(t *testing.T) {
	assert.Equal(t, "/api/image/rec1/my%20cat.png", ProxyImagePath("rec1", "my cat.png"))
}

func TestValidate(t *testing.T) {
	for _, ct := range []string{"image/svg+xml", "image/png", "image/jpeg", "image/gif"} {
		assert.NoError(t, Validate(File{Name: "x", ContentType: ct, Data: []byte{1}}), ct)
	}
	for _, ct := range []string{"image/webp", "image/PNG", "text/html", "", "image/png; charset=x"} {
		assert.ErrorIs(t, Validate(File{Name: "x", ContentType: ct}), ErrUnsupportedType, ct)
	}
}

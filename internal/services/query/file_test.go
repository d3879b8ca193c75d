package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	filters []string
	items   []map[string]any
	status  int
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.filters = append(f.filters, r.URL.Query().Get("filter"))
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"code":400,"message":"bad filter"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "perPage": 500, "items": f.items})
}

func newStore(t *testing.T, fake *fakeStore) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := backend.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func sampleItems() []map[string]any {
	return []map[string]any{
		{"id": "b", "author": "bob", "image": "b.png", "fileSize": "1.5 KB", "created": "2024-05-02 10:00:00.000Z"},
		{"id": "a", "author": "bob", "image": "a.png", "fileSize": "512 Bytes", "created": "2024-05-01 10:00:00.000Z"},
	}
}

func TestGetFiles(t *testing.T) {
	fake := &fakeStore{items: sampleItems()}
	files := GetFiles(context.Background(), newStore(t, fake), "bob")

	require.Len(t, files, 2)
	assert.Equal(t, "b", files[0].ID)
	assert.Equal(t, "1.5 KB", files[0].FileSize)
	assert.Equal(t, []string{"author = 'bob'"}, fake.filters)
}

func TestGetFilesComparesSanitizedAuthor(t *testing.T) {
	fake := &fakeStore{}
	GetFiles(context.Background(), newStore(t, fake), "o'neil<b>")

	require.Len(t, fake.filters, 1)
	assert.Equal(t, "author = 'o&apos;neil&lt;b&gt;'", fake.filters[0])
}

func TestSearchFilesBlankTermMatchesGetFiles(t *testing.T) {
	fake := &fakeStore{items: sampleItems()}
	store := newStore(t, fake)

	all := GetFiles(context.Background(), store, "bob")
	searched := SearchFiles(context.Background(), store, "bob", "   ")

	assert.Equal(t, all, searched)
	require.Len(t, fake.filters, 2)
	assert.Equal(t, fake.filters[0], fake.filters[1])
}

func TestSearchFilesWithTerm(t *testing.T) {
	fake := &fakeStore{items: sampleItems()[:1]}
	files := SearchFiles(context.Background(), newStore(t, fake), "bob", "b.png")

	require.Len(t, files, 1)
	assert.Equal(t, "author = 'bob' && (image ~ 'b.png' || fileSize ~ 'b.png')", fake.filters[0])
}

func TestReadPathsSwallowErrors(t *testing.T) {
	fake := &fakeStore{status: http.StatusBadRequest}
	store := newStore(t, fake)

	files := GetFiles(context.Background(), store, "bob")
	assert.NotNil(t, files)
	assert.Empty(t, files)

	files = SearchFiles(context.Background(), store, "bob", "x")
	assert.NotNil(t, files)
	assert.Empty(t, files)

	_, err := ListFiles(context.Background(), store, "bob", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, backend.StatusOf(err))
}

func TestListFilesEmptyIsNotAnError(t *testing.T) {
	files, err := ListFiles(context.Background(), newStore(t, &fakeStore{}), "bob", "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestTotalsAndCount(t *testing.T) {
	files := []models.FileRecord{
		{FileSize: "1 KB"},
		{FileSize: "1 KB"},
		{FileSize: "garbage"},
	}
	assert.Equal(t, "2 KB", TotalFileSize(files))
	assert.Equal(t, "3", FileUploadCount(files))
	assert.Equal(t, "0 Bytes", TotalFileSize(nil))
	assert.Equal(t, "0", FileUploadCount(nil))
}

func TestIsUserLoggedIn(t *testing.T) {
	assert.False(t, IsUserLoggedIn(nil))

	c, err := backend.NewClient("http://store.local")
	require.NoError(t, err)
	assert.False(t, IsUserLoggedIn(c))
	assert.Empty(t, CurrentUsername(c))
}

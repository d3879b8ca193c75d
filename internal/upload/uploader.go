// Package upload is the client side of the image upload pipeline: it
// validates files, encodes them as the multipart form the relay expects and
// transfers them with progress reporting.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/sanitize"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/units"
	"golang.org/x/sync/errgroup"
)

const (
	RelayPath  = "/api/upload"
	CSRFHeader = "X-CSRF-Token"

	FieldImage    = "image"
	FieldAuthor   = "author"
	FieldFileSize = "fileSize"
)

// File is one upload request held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the payload length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Uploader sends files to the relay endpoint of one server.
type Uploader struct {
	serverURL string
	http      *http.Client
	tokens    TokenSource
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithHTTPClient replaces the default cookie-keeping client.
func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) {
		if hc != nil {
			u.http = hc
		}
	}
}

// WithTokenSource replaces the default meta tag token source.
func WithTokenSource(ts TokenSource) Option {
	return func(u *Uploader) {
		if ts != nil {
			u.tokens = ts
		}
	}
}

// NewUploader creates an uploader for the server at serverURL. By default
// the anti-forgery token is read from the server's root page.
func NewUploader(serverURL string, opts ...Option) (*Uploader, error) {
	parsed, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("upload: invalid server URL %q", serverURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	u := &Uploader{
		serverURL: strings.TrimRight(parsed.String(), "/"),
		http:      &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.tokens == nil {
		u.tokens = MetaTokenSource{PageURL: u.serverURL + "/", Client: u.http}
	}
	return u, nil
}

// UploadFiles uploads every file concurrently on behalf of username.
//
// The whole batch is rejected before any transfer starts if one file has a
// disallowed type. Otherwise it waits for all transfers and returns the
// first failure; files that were already stored stay stored. onProgress
// calls are serialized. The anti-forgery token is fetched once and shared
// by every transfer of the batch, since each page fetch rotates the cookie.
func (u *Uploader) UploadFiles(ctx context.Context, files []File, username string, onProgress ProgressFunc) error {
	if err := validateTypes(files); err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	report := serialized(onProgress)
	token := u.token(ctx)

	var g errgroup.Group
	for _, f := range files {
		f := f
		g.Go(func() error {
			return u.send(ctx, f, username, token, report)
		})
	}
	return g.Wait()
}

// UploadFile validates and transfers a single file. It succeeds only when
// the relay answers 200.
func (u *Uploader) UploadFile(ctx context.Context, f File, username string, onProgress ProgressFunc) error {
	return u.send(ctx, f, username, u.token(ctx), onProgress)
}

// token returns "" when the source fails; the header is still sent and the
// server decides.
func (u *Uploader) token(ctx context.Context) string {
	token, err := u.tokens.Token(ctx)
	if err != nil {
		return ""
	}
	return token
}

func (u *Uploader) send(ctx context.Context, f File, username, token string, onProgress ProgressFunc) error {
	if err := Validate(f); err != nil {
		return err
	}

	body, contentType, err := encodeForm(f, username)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUploadFailed, f.Name, err)
	}

	total := int64(len(body))
	reader := newProgressReader(bytes.NewReader(body), f.Name, total, onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.serverURL+RelayPath, reader)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUploadFailed, f.Name)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(CSRFHeader, token)

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUploadFailed, f.Name)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUploadFailed, f.Name)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// encodeForm builds the relay form: the raw image, the sanitized author
// and the human readable size.
func encodeForm(f File, username string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldImage, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}

	if err := w.WriteField(FieldAuthor, sanitize.String(username)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(FieldFileSize, units.FormatSize(f.Size())); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ProxyImagePath is the server path that re-serves a stored image.
func ProxyImagePath(fileID, fileName string) string {
	return "/api/image/" + url.PathEscape(fileID) + "/" + url.PathEscape(fileName)
}

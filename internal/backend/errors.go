package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrInvalidResponse is returned when the store answers 2xx with a body
// that cannot be decoded into the expected shape.
var ErrInvalidResponse = errors.New("backend: invalid response data")

// ResponseError is a non-2xx answer from the store.
type ResponseError struct {
	Status  int
	URL     string
	Message string
	Data    map[string]any
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.Status, e.URL, e.Message)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.URL)
}

func newResponseError(req *http.Request, resp *http.Response) *ResponseError {
	rerr := &ResponseError{
		Status:  resp.StatusCode,
		URL:     req.URL.Redacted(),
		Message: http.StatusText(resp.StatusCode),
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload map[string]any
	if json.Unmarshal(raw, &payload) == nil && payload != nil {
		rerr.Data = payload
		if msg, ok := payload["message"].(string); ok && msg != "" {
			rerr.Message = msg
		}
	}
	return rerr
}

// StatusOf returns the store status carried by err, or 0.
func StatusOf(err error) int {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		return rerr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

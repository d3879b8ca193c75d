package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// fullListBatch is the page size used by GetFullList.
const fullListBatch = 500

// Record is a raw store record.
type Record map[string]any

// ID returns the store assigned identifier.
func (r Record) ID() string {
	return r.GetString("id")
}

// GetString returns field key when it is a string.
func (r Record) GetString(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Decode converts the record into out through its JSON form.
func (r Record) Decode(out any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// ListOptions narrows and orders a list query.
type ListOptions struct {
	Filter string
	Sort   string
	Expand string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Expand != "" {
		q.Set("expand", o.Expand)
	}
	return q
}

// ListResult is one page of records.
type ListResult struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

// AuthResult is the answer of a successful password authentication.
type AuthResult struct {
	Token  string `json:"token"`
	Record Record `json:"record"`
}

// RecordService exposes the record API of one collection.
type RecordService struct {
	client     *Client
	collection string
}

func (s *RecordService) basePath() string {
	return "/api/collections/" + url.PathEscape(s.collection)
}

func (s *RecordService) recordsPath() string {
	return s.basePath() + "/records"
}

func (s *RecordService) recordPath(id string) string {
	return s.recordsPath() + "/" + url.PathEscape(id)
}

// GetList fetches a single page.
func (s *RecordService) GetList(ctx context.Context, page, perPage int, opts ListOptions) (ListResult, error) {
	q := opts.values()
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))

	var result ListResult
	err := s.client.doJSON(ctx, http.MethodGet, s.recordsPath(), q, nil, &result)
	return result, err
}

// GetFullList fetches every matching record, page by page.
func (s *RecordService) GetFullList(ctx context.Context, opts ListOptions) ([]Record, error) {
	q := opts.values()
	q.Set("perPage", strconv.Itoa(fullListBatch))
	q.Set("skipTotal", "1")

	items := []Record{}
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))

		var result ListResult
		if err := s.client.doJSON(ctx, http.MethodGet, s.recordsPath(), q, nil, &result); err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.Items) < fullListBatch {
			return items, nil
		}
	}
}

// GetOne fetches a record by id.
func (s *RecordService) GetOne(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.client.doJSON(ctx, http.MethodGet, s.recordPath(id), nil, nil, &rec)
	return rec, err
}

// Create creates a record from a JSON body.
func (s *RecordService) Create(ctx context.Context, body any) (Record, error) {
	var rec Record
	err := s.client.doJSON(ctx, http.MethodPost, s.recordsPath(), nil, body, &rec)
	return rec, err
}

// CreateMultipart creates a record from an already encoded multipart body.
// The body is sent as is; extra headers are added to the request. The
// store must answer with a JSON object.
func (s *RecordService) CreateMultipart(ctx context.Context, contentType string, body io.Reader, header http.Header) (map[string]any, error) {
	req, err := s.client.newRequest(ctx, http.MethodPost, s.recordsPath(), nil, body)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrInvalidResponse, decoded)
	}
	return obj, nil
}

// Update patches a record.
func (s *RecordService) Update(ctx context.Context, id string, body any) (Record, error) {
	var rec Record
	err := s.client.doJSON(ctx, http.MethodPatch, s.recordPath(id), nil, body, &rec)
	return rec, err
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.client.doJSON(ctx, http.MethodDelete, s.recordPath(id), nil, nil, nil)
}

// AuthWithPassword authenticates against an auth collection and stores the
// resulting session in the client's auth store.
func (s *RecordService) AuthWithPassword(ctx context.Context, identity, password string) (AuthResult, error) {
	payload := map[string]string{
		"identity": identity,
		"password": password,
	}

	var result AuthResult
	if err := s.client.doJSON(ctx, http.MethodPost, s.basePath()+"/auth-with-password", nil, payload, &result); err != nil {
		return AuthResult{}, err
	}
	if result.Token == "" {
		return AuthResult{}, fmt.Errorf("%w: missing token", ErrInvalidResponse)
	}
	if err := s.client.authStore.Save(ctx, result.Token, result.Record); err != nil {
		return result, fmt.Errorf("backend: persist session: %w", err)
	}
	return result, nil
}

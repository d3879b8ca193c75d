package backend

import (
	"context"
	"net/http"
	"net/url"
)

// FilePath returns the store path of a record's file. The file name is
// percent-encoded.
func FilePath(collection, recordID, fileName string) string {
	return "/api/files/" + url.PathEscape(collection) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(fileName)
}

// GetFile downloads a record's file. Non-2xx answers are returned as
// *ResponseError. The caller closes the response body.
func (c *Client) GetFile(ctx context.Context, collection, recordID, fileName, accept string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, FilePath(collection, recordID, fileName), nil, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.send(req)
}

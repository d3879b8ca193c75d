package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// TokenSource supplies the anti-forgery token sent with every upload.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// MetaTokenSource reads the token from the csrf-token meta tag of a page
// served by the upload server. The client must keep cookies (see
// NewUploader) so the token matches the cookie the page set.
type MetaTokenSource struct {
	PageURL string
	Client  *http.Client
}

func (m MetaTokenSource) Token(ctx context.Context) (string, error) {
	hc := m.Client
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.PageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csrf page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch csrf page: status %d", resp.StatusCode)
	}

	return metaContent(io.LimitReader(resp.Body, 1<<20), "csrf-token")
}

// metaContent returns the content attribute of the first
// <meta name="name"> element, or "" when there is none.
func metaContent(r io.Reader, name string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse csrf page: %w", err)
	}

	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var metaName, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					metaName = a.Val
				case "content":
					content = a.Val
				}
			}
			if strings.EqualFold(metaName, name) {
				found = content
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found, nil
}

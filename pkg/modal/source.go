package modal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// maxResponseSize caps how much of a content response is read.
const maxResponseSize = 4 << 20

// Response is remote dialog content: option settings plus optional markup
// that replaces the content option when non-empty.
type Response struct {
	Content map[string]any `json:"content"`
	HTML    string         `json:"html"`
}

// Source fetches dialog content by URL.
type Source interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPSource fetches JSON documents of the form
// {"content": {...options...}, "html": "..."}.
type HTTPSource struct {
	Client *http.Client
}

var errNotJSON = errors.New("response is not JSON")

// Fetch implements Source.
func (s HTTPSource) Fetch(ctx context.Context, url string) (*Response, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return ParseResponse(body)
}

// ParseResponse decodes a content document. A missing or non-object
// content field yields nil settings.
func ParseResponse(body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, errNotJSON
	}
	out := &Response{HTML: gjson.GetBytes(body, "html").String()}
	if content := gjson.GetBytes(body, "content"); content.IsObject() {
		out.Content, _ = content.Value().(map[string]any)
	}
	return out, nil
}

package modal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marcus/modalkit/pkg/ui"
)

// MediaLoader reports when an embedded media element has loaded. Load must
// call done exactly once, on the loop.
type MediaLoader interface {
	Load(loop ui.Loop, el *ui.Element, done func(error))
}

// HTTPMediaLoader checks that media sources are reachable: remote sources
// with a HEAD request, local ones with a stat. Concurrent checks of the
// same source share one request.
type HTTPMediaLoader struct {
	Client  *http.Client
	Timeout time.Duration

	group singleflight.Group
}

// NewHTTPMediaLoader returns a loader using client, or a client with a
// ten second timeout when nil.
func NewHTTPMediaLoader(client *http.Client) *HTTPMediaLoader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPMediaLoader{Client: client, Timeout: 10 * time.Second}
}

// Load implements MediaLoader.
func (l *HTTPMediaLoader) Load(loop ui.Loop, el *ui.Element, done func(error)) {
	src := mediaSource(el)
	loop.Go(func() func() {
		_, err, _ := l.group.Do(src, func() (any, error) {
			return nil, l.probe(src)
		})
		return func() { done(err) }
	})
}

func (l *HTTPMediaLoader) probe(src string) error {
	switch {
	case src == "":
		return nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		ctx := context.Background()
		if l.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.Timeout)
			defer cancel()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, src, nil)
		if err != nil {
			return fmt.Errorf("load %s: %w", src, err)
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return fmt.Errorf("load %s: %w", src, err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("load %s: %s", src, resp.Status)
		}
		return nil
	default:
		if _, err := os.Stat(strings.TrimPrefix(src, "file://")); err != nil {
			return fmt.Errorf("load %s: %w", src, err)
		}
		return nil
	}
}

func mediaSource(el *ui.Element) string {
	if src := el.Attr("src"); src != "" {
		return src
	}
	return el.Attr("href")
}

package modal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/marcus/modalkit/pkg/ui"
)

// heldMedia keeps load callbacks until the test releases them.
type heldMedia struct {
	done []func(error)
	tags []string
}

func (h *heldMedia) Load(_ ui.Loop, el *ui.Element, done func(error)) {
	h.tags = append(h.tags, el.Tag)
	h.done = append(h.done, done)
}

func TestRenderWaitsForMedia(t *testing.T) {
	env, _ := newTestEnv()
	media := &heldMedia{}
	env.Media = media

	d := New(env, DefaultOptions()).Configure(map[string]any{
		"content":      `<img src="shot.png" width="60"><video src="demo.mp4"></video>`,
		"fit_to_media": true,
	})
	renders := record(d, EventRender)
	hooked := 0
	d.opts.OnRender = func(*Dialog) { hooked++ }

	if err := d.Render(); err != nil {
		t.Fatal(err)
	}
	if len(media.done) != 2 {
		t.Fatalf("loader called for %v, want img and video", media.tags)
	}
	if d.State() != StateRendering || d.Visible() {
		t.Fatalf("state while loading = %s", d.State())
	}
	if err := d.Render(); !errors.Is(err, ErrRenderPending) {
		t.Errorf("second Render = %v, want ErrRenderPending", err)
	}

	media.done[0](nil)
	media.done[0](nil) // repeated callbacks are ignored
	if d.State() != StateRendering || len(*renders) != 0 || hooked != 0 {
		t.Fatal("completed before all media loaded")
	}

	media.done[1](errors.New("404"))
	if d.State() != StateVisible {
		t.Fatalf("state after loading = %s", d.State())
	}
	if len(*renders) != 1 || hooked != 1 {
		t.Errorf("render events = %d, hook calls = %d", len(*renders), hooked)
	}
	root := d.Root()
	if !root.HasClass("modal-photo") || root.HasClass("modal-video") {
		t.Errorf("content classes = %v", root.Classes())
	}
	if !root.First("video").HasClass("media-error") {
		t.Error("failed media not marked")
	}
	if got, _ := root.Style("width"); got != "64" {
		t.Errorf("width = %q, want media width plus chrome", got)
	}
	if d.Overlay() == nil {
		t.Error("overlay not created after media loaded")
	}
}

func TestCloseWhileMediaPending(t *testing.T) {
	env, loop := newTestEnv()
	media := &heldMedia{}
	env.Media = media
	d := Quick(env, map[string]any{"content": `<iframe src="https://example.com"></iframe>`})
	d.Close()
	loop.RunAll()
	media.done[0](nil)
	if d.State() != StateClosed || d.Overlay() != nil {
		t.Errorf("late media callback revived the dialog: %s", d.State())
	}
}

func TestContentTypeClass(t *testing.T) {
	tests := []struct {
		content string
		class   string
	}{
		{`<video src="a.mp4"></video><iframe src="b"></iframe>`, "modal-video"},
		{`<iframe src="b"></iframe>`, "modal-iframe"},
		{`<p>text</p>`, ""},
	}
	for _, tt := range tests {
		env, _ := newTestEnv()
		root := Quick(env, map[string]any{"content": tt.content}).Root()
		for _, c := range []string{"modal-photo", "modal-video", "modal-iframe"} {
			if root.HasClass(c) != (c == tt.class) {
				t.Errorf("%s: class %s = %v", tt.content, c, root.HasClass(c))
			}
		}
	}
}

func TestHTTPMediaLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"reachable", srv.URL + "/ok.png", false},
		{"not found", srv.URL + "/missing.png", true},
		{"local missing", filepath.Join(t.TempDir(), "nope.png"), true},
		{"no source", "", false},
	}
	loader := NewHTTPMediaLoader(srv.Client())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := ui.NewManualLoop()
			el := ui.NewElement("img")
			if tt.src != "" {
				el.SetAttr("src", tt.src)
			}
			var got error
			called := false
			loader.Load(loop, el, func(err error) {
				called = true
				got = err
			})
			loop.Flush()
			if !called {
				t.Fatal("done not called")
			}
			if (got != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", got, tt.wantErr)
			}
		})
	}
}

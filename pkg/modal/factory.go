package modal

import (
	"context"
	"html"
	"strings"

	"github.com/marcus/modalkit/internal/i18n"
	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/ui"
)

// Quick creates a dialog from default options merged with opts and renders
// it.
func Quick(env Env, opts map[string]any) *Dialog {
	d := New(env, DefaultOptions()).Configure(opts)
	if err := d.Render(); err != nil {
		d.log.Log("render failed", "err", err)
	}
	return d
}

// Confirm renders a yes/no style prompt. An empty body asks "Are you
// sure?" and no labels means Yes and Cancel, both translated. Each button
// closes the dialog after emitting confirm_selected with its lowercased
// label.
func Confirm(env Env, title, body string, labels ...string) *Dialog {
	if body == "" {
		body = i18n.T(env.Lang, i18n.AreYouSure)
	}
	if len(labels) == 0 {
		labels = []string{i18n.T(env.Lang, i18n.Yes), i18n.T(env.Lang, i18n.Cancel)}
	}

	opts := DefaultOptions()
	opts.Title = title
	opts.Content = "<p>" + html.EscapeString(body) + "</p>"
	for i, label := range labels {
		b := Button{Label: label, Close: true}
		if i == 0 {
			b.Class = "primary"
		}
		opts.Buttons = append(opts.Buttons, b)
	}

	d := New(env, opts)
	d.AddListener(EventUserAction, func(e *eventbus.Event) bool {
		d.emit(EventConfirmSelected, e.Params)
		return true
	})
	if err := d.Render(); err != nil {
		d.log.Log("render failed", "err", err)
	}
	return d
}

// Fetch loads dialog content from a URL and renders it once the request
// completes. target is a URL string, an event whose target element has an
// href (its default action is prevented), or such an element directly. A
// target without a URL or a failed request shows a translated error dialog
// instead. The rendered dialog emits fetch_content with the *Response.
func Fetch(ctx context.Context, env Env, target any) {
	url, ok := targetURL(target)
	if !ok {
		env.Log.Log("fetch target has no url", "target", target)
		errorDialog(env, i18n.ContentNotFound)
		return
	}
	src := env.Source
	if src == nil {
		src = HTTPSource{}
	}

	env.Doc.Loop().Go(func() func() {
		resp, err := src.Fetch(ctx, url)
		return func() {
			if err != nil {
				env.Log.Log("fetch failed", "url", url, "err", err)
				errorDialog(env, i18n.ErrorOccurred)
				return
			}
			d := New(env, DefaultOptions()).Configure(resp.Content)
			if strings.TrimSpace(resp.HTML) != "" {
				d.opts.Content = resp.HTML
				d.opts.ContentSelector = ""
			}
			if err := d.Render(); err != nil {
				d.log.Log("render failed", "err", err)
			}
			d.emit(EventFetchContent, resp)
		}
	})
}

func targetURL(target any) (string, bool) {
	var el *ui.Element
	switch t := target.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case *eventbus.Event:
		if t == nil {
			return "", false
		}
		t.PreventDefault()
		el, _ = t.Target.(*ui.Element)
	case *ui.Element:
		el = t
	}
	for ; el != nil; el = el.Parent() {
		if href := strings.TrimSpace(el.Attr("href")); href != "" {
			return href, true
		}
	}
	return "", false
}

func errorDialog(env Env, key string) *Dialog {
	return Quick(env, map[string]any{
		"title":   i18n.T(env.Lang, i18n.ErrorTitle),
		"content": "<p>" + html.EscapeString(i18n.T(env.Lang, key)) + "</p>",
		"theme":   "danger",
	})
}

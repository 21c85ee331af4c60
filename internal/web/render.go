package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/web/templates"
)

// render writes a full page, or only body for HTMX requests. Pending
// notifications for the session are drained into the response either way.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page templates.Page, body templ.Component) {
	if isHTMX(r) {
		s.renderFragment(w, r, status, body)
		return
	}
	page.Toasts = s.notes.Drain(core.SessionFromContext(r.Context()))
	s.write(w, r, status, templates.Layout(page, body))
}

// renderFragment writes body followed by an out-of-band toast update.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, status int, body templ.Component) {
	toasts := templates.ToastsOOB(s.notes.Drain(core.SessionFromContext(r.Context())))
	s.write(w, r, status, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return toasts.Render(ctx, w)
	}))
}

// write buffers c so a failed render never leaves a half-written page.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// notify queues n for the current session.
func (s *Server) notify(r *http.Request, n notify.Notification) {
	s.notes.Push(core.SessionFromContext(r.Context()), n)
}

// redirect sends the browser to target after a form post.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// localReferer returns the path of a same-site Referer, or fallback.
func localReferer(r *http.Request, fallback string) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.Host != "" && u.Host != r.Host {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

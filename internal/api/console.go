package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/qareview/internal/console"
	"github.com/kalambet/qareview/internal/storage"
	"github.com/kalambet/qareview/internal/view"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	sessionCookie      = "qareview-session"
	themeCookie        = "review-qa-theme"
	themeCookieMaxAge  = 365 * 24 * 60 * 60
)

// JournalReader lists recorded review actions.
type JournalReader interface {
	RecentActions(limit int) ([]storage.Action, error)
}

// ConsoleDeps holds dependencies for the console HTTP surface.
type ConsoleDeps struct {
	Console  *console.Console
	Sessions *console.Sessions
	Renderer *view.Renderer
	Journal  JournalReader // optional; /journal answers 404 when nil
	Logger   *slog.Logger
}

// NewConsoleHandler returns the router serving the review console. Every
// interaction is one POST to /actions/{action}.
func NewConsoleHandler(deps ConsoleDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", handlePage(deps))
	r.Get("/health", handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))
	r.Get("/areas/{area}", handleArea(deps))
	r.Post("/actions/{action}", handleAction(deps))
	r.Get("/journal", handleJournal(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// session returns the caller's session, issuing a cookie for new ones.
func session(deps ConsoleDeps, w http.ResponseWriter, r *http.Request) *console.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created := deps.Sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func themeFrom(r *http.Request) console.Theme {
	if c, err := r.Cookie(themeCookie); err == nil {
		return console.ParseTheme(c.Value)
	}
	return console.ThemeLight
}

func writeTheme(w http.ResponseWriter, theme console.Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   themeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

func handlePage(deps ConsoleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session(deps, w, r)
		var buf bytes.Buffer
		var err error
		sess.Do(func(st *console.State) {
			st.Theme = themeFrom(r)
			if !st.Bootstrapped {
				deps.Console.Bootstrap(r.Context(), st)
			}
			err = deps.Renderer.Page(&buf, st)
			st.ScrollTo = ""
		})
		writeHTML(w, deps.Logger, &buf, err)
	}
}

func handleArea(deps ConsoleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		area := console.Area(chi.URLParam(r, "area"))
		sess := session(deps, w, r)
		var buf bytes.Buffer
		var err error
		sess.Do(func(st *console.State) {
			err = deps.Renderer.Area(&buf, area, st)
		})
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "%v", err)
			return
		}
		writeHTML(w, deps.Logger, &buf, nil)
	}
}

func handleAction(deps ConsoleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "action")
		act, ok := actions[name]
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "unknown action %q", name)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := r.ParseForm(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid form: %v", err)
			return
		}

		sess := session(deps, w, r)
		var buf bytes.Buffer
		var err error
		var theme console.Theme
		sess.Do(func(st *console.State) {
			if !st.Bootstrapped {
				st.Theme = themeFrom(r)
				deps.Console.Bootstrap(r.Context(), st)
			}
			before := st.Theme
			act.run(r.Context(), deps.Console, st, r.PostForm)
			if st.Theme != before {
				theme = st.Theme
			}
			if act.silent {
				return
			}
			err = deps.Renderer.Shell(&buf, st)
			st.ScrollTo = ""
		})

		if theme != "" {
			writeTheme(w, theme)
		}
		if act.silent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeHTML(w, deps.Logger, &buf, err)
	}
}

func handleJournal(deps ConsoleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Journal == nil {
			httpError(w, http.StatusNotFound, "not_found", "journal disabled")
			return
		}
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid limit %q", v)
				return
			}
			limit = min(n, 500)
		}
		entries, err := deps.Journal.RecentActions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading journal: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(journalEntries(entries))
	}
}

type journalEntry struct {
	ID               string `json:"id"`
	At               string `json:"at"`
	Kind             string `json:"kind"`
	Scope            string `json:"scope,omitempty"`
	SegmentID        string `json:"segment_id,omitempty"`
	DocumentID       string `json:"document_id,omitempty"`
	TargetDocumentID string `json:"target_document_id,omitempty"`
	Outcome          string `json:"outcome"`
	Error            string `json:"error,omitempty"`
	Detail           string `json:"detail,omitempty"`
}

func journalEntries(actions []storage.Action) []journalEntry {
	out := make([]journalEntry, len(actions))
	for i, a := range actions {
		out[i] = journalEntry{
			ID:               a.ID,
			At:               a.At.UTC().Format(time.RFC3339),
			Kind:             string(a.Kind),
			Scope:            a.Scope,
			SegmentID:        a.SegmentID,
			DocumentID:       a.DocumentID,
			TargetDocumentID: a.TargetDocumentID,
			Outcome:          a.Outcome,
			Error:            a.Error,
			Detail:           a.Detail,
		}
	}
	return out
}

func writeHTML(w http.ResponseWriter, logger *slog.Logger, buf *bytes.Buffer, err error) {
	if err != nil {
		logger.Error("render failed", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// requestLogger writes one http.request record per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// formInt parses an integer form field, falling back to def.
func formInt(f url.Values, key string, def int) int {
	n, err := strconv.Atoi(f.Get(key))
	if err != nil {
		return def
	}
	return n
}

// Package httpapi exposes the entryvault JSON API. It is a thin adapter:
// request parsing and error mapping only, all behavior lives in the services.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
	"github.com/dkorchagin/entryvault/internal/service"
	"github.com/dkorchagin/entryvault/internal/session"
)

// SessionHeader carries the refreshed, re-signed session token back to the
// client on every authenticated response (sliding expiration).
const SessionHeader = "X-Session-Token"

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	entries  service.EntryService
	sessions *session.Manager
	codec    *session.TokenCodec
}

// New constructs an HTTP API server with injected services.
func New(auth service.AuthService, entries service.EntryService, sessions *session.Manager, codec *session.TokenCodec) *Server {
	return &Server{auth: auth, entries: entries, sessions: sessions, codec: codec}
}

// Routes returns the request multiplexer for the API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("DELETE /api/account", s.requireSession(s.handleDeleteAccount))
	mux.Handle("GET /api/entries/count", s.requireSession(s.handleEntryCount))
	mux.Handle("POST /api/entries", s.requireSession(s.handleCreateEntry))
	mux.Handle("GET /api/entries/{id}", s.requireSession(s.handleGetEntry))
	mux.Handle("PUT /api/entries/{id}", s.requireSession(s.handleUpdateEntry))
	mux.Handle("DELETE /api/entries/{id}", s.requireSession(s.handleDeleteEntry))
	mux.Handle("GET /api/changes", s.requireSession(s.handleChanges))
	mux.Handle("GET /api/sync", s.requireSession(s.handleSync))
	return mux
}

// requireSession authenticates the bearer token, slides its expiration, and
// returns the re-signed token in SessionHeader.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeErr(w, errs.ErrNoSession)
			return
		}
		sess, err := s.codec.Decode(raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		refreshed, err := s.sessions.Validate(r.Context(), sess)
		if err != nil {
			writeErr(w, err)
			return
		}
		if signed, err := s.codec.Encode(refreshed); err == nil {
			w.Header().Set(SessionHeader, signed)
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), refreshed.UID)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// --- Accounts ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess, err := s.auth.Authenticate(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		writeErr(w, err)
		return
	}
	signed, err := s.codec.Encode(sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":         signed,
		"expires_at_ms": sess.ExpiresAt.UnixMilli(),
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	if err := s.auth.DeleteAccount(r.Context(), uid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Entries ---

type entryRequest struct {
	Salt    []byte `json:"salt"`
	Name    []byte `json:"name"`
	Content []byte `json:"content"`
}

type entryResponse struct {
	ID           int64  `json:"id"`
	Salt         []byte `json:"salt"`
	Name         []byte `json:"name"`
	Content      []byte `json:"content"`
	LastChangeMs int64  `json:"last_change_ms"`
}

func toEntryResponse(e *model.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		Salt:         e.Salt,
		Name:         e.Name,
		Content:      e.Content,
		LastChangeMs: e.LastChange.UnixMilli(),
	}
}

func (s *Server) handleEntryCount(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	n, err := s.entries.Count(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := s.entries.Create(r.Context(), uid, req.Salt, req.Name, req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.entries.Get(r.Context(), uid, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.entries.Update(r.Context(), uid, id, req.Salt, req.Name, req.Content); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.entries.Delete(r.Context(), uid, id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Change feed ---

type changeResponse struct {
	ID           int64 `json:"id"`
	LastChangeMs int64 `json:"last_change_ms"`
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	cs, err := s.entries.Changes(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]changeResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, changeResponse{ID: c.ID, LastChangeMs: c.LastChange.UnixMilli()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	afterMs, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	if err != nil {
		http.Error(w, "bad 'after' timestamp", http.StatusBadRequest)
		return
	}
	es, err := s.entries.ChangedAfter(r.Context(), uid, time.UnixMilli(afterMs))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]entryResponse, 0, len(es))
	for i := range es {
		out = append(out, toEntryResponse(&es[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Helpers ---

// pathID parses the {id} path segment. Malformed ids are rejected here and
// never reach the services.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad entry id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the closed business error set onto HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrNoSession):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, errs.ErrRateLimited):
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	case errors.Is(err, errs.ErrLimitExceeded):
		http.Error(w, "entry allowance exceeded", http.StatusForbidden)
	case errors.Is(err, errs.ErrAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrNoUser):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal", http.StatusInternalServerError)
	}
}

// Package server implements the mosaic HTTP render service.
//
// Endpoints:
//   - POST /render: render a value tree to SVG (cached)
//   - POST /documents: render and persist under a generated ID
//   - GET /documents/{id}: fetch a stored render
//   - GET /healthz: liveness probe
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mosaiclabs/mosaic/internal/server/store"
	"github.com/mosaiclabs/mosaic/pkg/cache"
	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/observability"
	"github.com/mosaiclabs/mosaic/pkg/tree"
	"github.com/mosaiclabs/mosaic/pkg/treeio"
	"github.com/mosaiclabs/mosaic/pkg/treemap"
)

// renderCacheTTL bounds how long rendered SVGs stay cached. Inputs are
// content-addressed, so a long TTL is safe; this just caps storage.
const renderCacheTTL = 24 * time.Hour

// Options configures a Server. Zero-value fields get safe defaults.
type Options struct {
	Logger *log.Logger
	Cache  cache.Cache
	Store  store.Store
}

// Server routes render requests to the treemap renderer.
type Server struct {
	logger *log.Logger
	cache  cache.Cache
	store  store.Store
	router chi.Router
}

// New creates a server with the given options.
func New(opts Options) *Server {
	s := &Server{
		logger: opts.Logger,
		cache:  opts.Cache,
		store:  opts.Store,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/documents", s.handleCreateDocument)
	r.Get("/documents/{id}", s.handleGetDocument)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// renderRequest is the body accepted by POST /render and POST /documents.
type renderRequest struct {
	Tree    json.RawMessage `json:"tree"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Style   string          `json:"style"`
	Padding *float64        `json:"padding"`
	Name    string          `json:"name"` // documents only
}

// renderOptions is the cache key component derived from a request; any
// field that changes the output must appear here.
type renderOptions struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Style   string   `json:"style"`
	Padding *float64 `json:"padding"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	svg, err := s.renderFromBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}

	svg, err := s.render(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	doc := store.Document{
		ID:        uuid.NewString(),
		Name:      req.Name,
		SVG:       svg,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "store document"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, apperrors.New(apperrors.ErrCodeDocumentNotFound, "document %s", id))
		return
	}
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load document"))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(doc.SVG)
}

func (s *Server) renderFromBody(r *http.Request) ([]byte, error) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request")
	}
	return s.render(r, req)
}

func (s *Server) render(r *http.Request, req renderRequest) ([]byte, error) {
	if len(req.Tree) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "request is missing a tree")
	}
	if req.Width == 0 {
		req.Width = 800
	}
	if req.Height == 0 {
		req.Height = 600
	}
	if req.Style == "" {
		req.Style = "plain"
	}

	opts := renderOptions{Width: req.Width, Height: req.Height, Style: req.Style, Padding: req.Padding}
	key := cache.RenderKey(req.Tree, opts)
	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		s.logger.Debug("render cache hit", "key", key[:16])
		return data, nil
	}

	t, err := treeio.Read(bytes.NewReader(req.Tree))
	if err != nil {
		return nil, err
	}

	renderer := treemap.New()
	if err := renderer.ApplyStyle(req.Style); err != nil {
		return nil, err
	}
	if req.Padding != nil {
		renderer.SetPadding(treemap.ConstantPadding(*req.Padding))
	}

	leaves := tree.CountLeaves(t)
	start := time.Now()
	observability.Render().OnLayoutStart(r.Context(), leaves)
	doc, err := renderer.Render(t, req.Width, req.Height)
	observability.Render().OnLayoutComplete(r.Context(), leaves, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	svg := doc.Bytes()
	observability.Render().OnRenderComplete(r.Context(), "svg", len(svg), time.Since(start), nil)
	if err := s.cache.Set(r.Context(), key, svg, renderCacheTTL); err != nil {
		s.logger.Warn("render cache write failed", "err", err)
	}
	return svg, nil
}

// statusForCode maps error codes to HTTP statuses.
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidTree, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidStyle, apperrors.ErrCodeInvalidDimensions,
		apperrors.ErrCodeInvalidProperty:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDocumentNotFound,
		apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  string(code),
		"error": err.Error(),
	})
}

// Package httpapi exposes the analyzer over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	logpkg "github.com/cognicore/sanskrit/internal/logger"
	"github.com/cognicore/sanskrit/internal/metrics"
	"github.com/cognicore/sanskrit/pkg/sanskrit"
	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
	"github.com/cognicore/sanskrit/pkg/sanskrit/textsrc"
)

// MaxBodyBytes bounds an analyze request body.
const MaxBodyBytes = 1 << 20

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest   = "bad_request"
	CodeInadmissible = "inadmissible_input"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Ratio    *float64 `json:"ratio,omitempty"`
	MinRatio *float64 `json:"min_ratio,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
	// HTML, when set, is reduced to its visible text first.
	HTML  string `json:"html,omitempty"`
	Steps *struct {
		SplitSandhi       bool `json:"split_sandhi"`
		TagPOS            bool `json:"tag_pos"`
		AnalyzeMorphology bool `json:"analyze_morphology"`
	} `json:"steps,omitempty"`
}

// TagResponse is the body of GET /api/tag.
type TagResponse struct {
	Tagged []tagger.Tagged `json:"tagged"`
	Mode   string          `json:"mode"`
}

// JoinResponse is the body of GET /api/join.
type JoinResponse struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Joined string `json:"joined"`
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
}

// Server serves the analyzer.
type Server struct {
	analyzer *sanskrit.Analyzer
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(analyzer *sanskrit.Analyzer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{analyzer: analyzer, logger: logger}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Get("/segment", s.Segment)
		r.Get("/tag", s.Tag)
		r.Get("/join", s.Join)
		r.Get("/analyses", s.ListAnalyses)
		r.Get("/analyses/{id}", s.GetAnalysis)
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler(r)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"tagger_ready": s.analyzer.TaggerReady(),
		"warnings":     s.analyzer.Warnings(),
	})
}

// Analyze handles POST /api/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	text := req.Text
	if text == "" && req.HTML != "" {
		text = textsrc.ExtractString(req.HTML)
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "text is required")
		return
	}

	steps := pipeline.AllSteps
	if req.Steps != nil {
		steps = pipeline.Steps{
			SplitSandhi:       req.Steps.SplitSandhi,
			TagPOS:            req.Steps.TagPOS,
			AnalyzeMorphology: req.Steps.AnalyzeMorphology,
		}
	}

	res, err := s.analyzer.AnalyzeWith(r.Context(), text, steps)
	metrics.ObserveAnalysis(res)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Segment handles GET /api/segment?token=.
func (s *Server) Segment(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "token is required")
		return
	}
	res := s.analyzer.Segment(r.Context(), token)
	metrics.ObserveSegment(res)
	writeJSON(w, http.StatusOK, res)
}

// Tag handles GET /api/tag?tokens=a,b.
func (s *Server) Tag(w http.ResponseWriter, r *http.Request) {
	var tokens []string
	for _, tok := range strings.Split(r.URL.Query().Get("tokens"), ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "tokens is required")
		return
	}
	tagged, mode := s.analyzer.Tag(tokens)
	writeJSON(w, http.StatusOK, TagResponse{Tagged: tagged, Mode: mode})
}

// Join handles GET /api/join?left=&right=.
func (s *Server) Join(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	left := strings.TrimSpace(q.Get("left"))
	right := strings.TrimSpace(q.Get("right"))
	if left == "" || right == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "left and right are required")
		return
	}
	writeJSON(w, http.StatusOK, JoinResponse{Left: left, Right: right, Joined: s.analyzer.Join(left, right)})
}

// ListAnalyses handles GET /api/analyses?limit=&token=.
func (s *Server) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var (
		list []store.Analysis
		err  error
	)
	if token := r.URL.Query().Get("token"); token != "" {
		list, err = s.analyzer.ByToken(r.Context(), token, limit)
	} else {
		list, err = s.analyzer.Recent(r.Context(), limit)
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

// GetAnalysis handles GET /api/analyses/{id}.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyzer.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var inadmissible *pipeline.InadmissibleError
	switch {
	case errors.As(err, &inadmissible):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:     CodeInadmissible,
			Message:  inadmissible.Error(),
			Ratio:    &inadmissible.Ratio,
			MinRatio: &inadmissible.MinRatio,
		})
	case errors.Is(err, internalerr.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "analysis not found")
	case errors.Is(err, sanskrit.ErrNoStore):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		logpkg.FromContext(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

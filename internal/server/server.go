// Package server serves the rendered map, charts and page over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/pipeline"
	"github.com/sells-group/citymap/internal/render"
)

// Artifact names, also used as cache key prefixes.
const (
	ArtifactPage     = "page"
	ArtifactMap      = "map"
	ArtifactChart    = "chart"
	ArtifactBubble   = "bubble"
	ArtifactFeatures = "features"
)

// sharedArtifacts do not depend on the attribute; they are cached and tagged
// under a single key.
var sharedArtifacts = map[string]bool{ArtifactFeatures: true}

const (
	contentSVG  = "image/svg+xml"
	contentHTML = "text/html; charset=utf-8"
	contentJSON = "application/json"
	contentGeo  = "application/geo+json"
)

// Options configures the HTTP handler.
type Options struct {
	CacheSize      int
	CacheTTL       time.Duration
	RateLimit      rate.Limit // per client, requests per second; 0 disables
	RateBurst      int
	AllowedOrigins []string
	DefaultAttr    model.Attribute
}

// Server renders artifacts from prepared data on request. The prepared data
// is read-only; the attribute comes from each request.
type Server struct {
	data    *pipeline.Prepared
	cache   *RenderCache
	limiter *clientLimiter
	opts    Options
	runID   string
	log     *zap.Logger
}

// New creates a Server over prepared data.
func New(data *pipeline.Prepared, opts Options) *Server {
	if opts.DefaultAttr == "" {
		opts.DefaultAttr = model.AttrPopulation
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		data:  data,
		cache: NewRenderCache(opts.CacheSize, opts.CacheTTL),
		opts:  opts,
		runID: uuid.NewString(),
		log:   zap.L().With(zap.String("component", "server")),
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}
	return s
}

// Cache returns the render cache.
func (s *Server) Cache() *RenderCache {
	return s.cache
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Get("/", s.artifact(ArtifactPage, contentHTML, s.renderPage))
		r.Get("/map.svg", s.artifact(ArtifactMap, contentSVG, s.data.RenderMap))
		r.Get("/chart.svg", s.artifact(ArtifactChart, contentSVG, s.data.RenderBar))
		r.Get("/bubble.svg", s.artifact(ArtifactBubble, contentSVG, s.data.RenderBubble))
		r.Get("/api/features", s.artifact(ArtifactFeatures, contentGeo, s.renderFeatures))
		r.Get("/api/breaks", s.handleBreaks)
	})

	return r
}

// attribute reads ?attr=, falling back to the default attribute.
func (s *Server) attribute(r *http.Request) (model.Attribute, error) {
	v := r.URL.Query().Get("attr")
	if v == "" {
		return s.opts.DefaultAttr, nil
	}
	return model.ParseAttribute(v)
}

func (s *Server) etag(artifact string, attr model.Attribute) string {
	return fmt.Sprintf(`"%s-%s-%s"`, s.runID, artifact, attr)
}

// artifact serves a cached rendering, rendering and caching it on a miss.
func (s *Server) artifact(name, contentType string, fn func(model.Attribute) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attr, err := s.attribute(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		key := attr
		if sharedArtifacts[name] {
			key = ""
		}

		etag := s.etag(name, key)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		cacheStatus := "hit"
		data := s.cache.Get(name, key)
		if data == nil {
			cacheStatus = "miss"
			data, err = fn(attr)
			if err != nil {
				s.log.Error("render failed",
					zap.String("artifact", name),
					zap.String("attr", string(attr)),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, "render failed")
				return
			}
			s.cache.Put(name, key, data)
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("ETag", etag)
		w.Header().Set("X-Cache", cacheStatus)
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(data)
	}
}

func (s *Server) renderPage(attr model.Attribute) ([]byte, error) {
	q := "?attr=" + string(attr)
	links := make([]render.PageLink, 0, len(model.Attributes))
	for _, a := range model.Attributes {
		links = append(links, render.PageLink{Attr: a, Href: "/?attr=" + string(a), Current: a == attr})
	}

	var buf bytes.Buffer
	err := render.RenderPage(&buf, render.Page{
		Attr:      attr,
		MapSrc:    "/map.svg" + q,
		ChartSrc:  "/chart.svg" + q,
		BubbleSrc: "/bubble.svg" + q,
		Breaks:    s.data.Classifier(attr).Breaks(),
		RunID:     s.runID,
		Links:     links,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderFeatures encodes the joined point features, which carry every
// attribute.
func (s *Server) renderFeatures(model.Attribute) ([]byte, error) {
	data, err := json.Marshal(s.data.Features)
	if err != nil {
		return nil, eris.Wrap(err, "server: encode features")
	}
	return data, nil
}

type breaksResponse struct {
	Attribute  model.Attribute  `json:"attribute"`
	Title      string           `json:"title"`
	Thresholds []float64        `json:"thresholds"`
	Breaks     []classify.Break `json:"breaks"`
}

func (s *Server) handleBreaks(w http.ResponseWriter, r *http.Request) {
	attr, err := s.attribute(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := s.data.Classifier(attr)
	writeJSON(w, http.StatusOK, breaksResponse{
		Attribute:  attr,
		Title:      attr.Title(),
		Thresholds: c.Thresholds(),
		Breaks:     c.Breaks(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"run_id": s.runID,
		"cities": len(s.data.Cities),
		"object": s.data.ObjectName,
		"cache":  s.cache.Stats(),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", contentJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"contentSummarizer/internal/domain/entity"
)

const requestIDHeader = "X-Request-ID"

// Service はHTTPハンドラから呼ばれるパイプライン操作
type Service interface {
	Summarize(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error)
	SummarizePlaylist(ctx context.Context, playlistURL string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error)
	SummarizePodcast(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error)
	UploadCookies(ctx context.Context, filename string, data []byte) error
}

type Server struct {
	service        Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewServer(service Service, maxUploadBytes int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 100 << 20
	}
	return &Server{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Handler はルーティング済みのhttp.Handlerを返します。CORSは全許可
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("POST /summarize-url", s.handleSummarizeURL)
	mux.HandleFunc("POST /summarize-file", s.handleSummarizeFile)
	mux.HandleFunc("POST /summarize-audio", s.handleSummarizeAudio)
	mux.HandleFunc("POST /summarize-playlist", s.handleSummarizePlaylist)
	mux.HandleFunc("POST /summarize-podcast", s.handleSummarizePodcast)
	mux.HandleFunc("POST /upload-cookies", s.handleUploadCookies)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.withRequestID(s.withAccessLog(mux)))
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

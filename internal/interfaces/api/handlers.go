package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"contentSummarizer/internal/domain/entity"
)

type urlRequest struct {
	URL   string `json:"url"`
	Depth string `json:"depth"`
}

type podcastRequest struct {
	RSSURL string `json:"rss_url"`
	Depth  string `json:"depth"`
}

type urlResponse struct {
	Source   string            `json:"source"`
	URL      string            `json:"url"`
	Depth    string            `json:"depth"`
	Summary  string            `json:"summary"`
	Metadata map[string]string `json:"metadata"`
}

type uploadResponse struct {
	Source   string `json:"source"`
	Filename string `json:"filename"`
	Depth    string `json:"depth"`
	Summary  string `json:"summary"`
}

type playlistItem struct {
	VideoURL string `json:"video_url"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
}

type playlistResponse struct {
	Source      string         `json:"source"`
	PlaylistURL string         `json:"playlist_url"`
	Depth       string         `json:"depth"`
	VideoCount  int            `json:"video_count"`
	Summaries   []playlistItem `json:"summaries"`
}

type podcastResponse struct {
	Source       string `json:"source"`
	EpisodeTitle string `json:"episode_title"`
	EpisodeURL   string `json:"episode_url"`
	Depth        string `json:"depth"`
	Summary      string `json:"summary"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleSummarizeURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	depth, err := entity.ParseDepth(req.Depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	src, err := entity.NewURLSource(req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.service.Summarize(detach(r), src, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, urlResponse{
		Source:   summary.SourceType.Label(),
		URL:      src.URL,
		Depth:    string(summary.Depth),
		Summary:  summary.Text,
		Metadata: summary.Metadata,
	})
}

func (s *Server) handleSummarizeFile(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, entity.NewUploadedFile)
}

func (s *Server) handleSummarizeAudio(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, entity.NewUploadedAudio)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, newSource func(string, []byte) entity.ContentSource) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	depth, err := entity.ParseDepth(r.FormValue("depth"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	src := newSource(filename, data)
	summary, err := s.service.Summarize(detach(r), src, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Source:   src.Type.Label(),
		Filename: filename,
		Depth:    string(summary.Depth),
		Summary:  summary.Text,
	})
}

func (s *Server) handleSummarizePlaylist(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	depth, err := entity.ParseDepth(req.Depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	batch, err := s.service.SummarizePlaylist(detach(r), req.URL, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]playlistItem, 0, len(batch.Items))
	for _, item := range batch.Items {
		if item.Err != nil {
			items = append(items, playlistItem{VideoURL: item.VideoURL, Error: item.Err.Error()})
			continue
		}
		items = append(items, playlistItem{VideoURL: item.VideoURL, Summary: item.Summary.Text})
	}

	writeJSON(w, http.StatusOK, playlistResponse{
		Source:      entity.SourceYouTubePlaylist.Label(),
		PlaylistURL: batch.PlaylistURL,
		Depth:       string(batch.Depth),
		VideoCount:  len(batch.Items),
		Summaries:   items,
	})
}

func (s *Server) handleSummarizePodcast(w http.ResponseWriter, r *http.Request) {
	var req podcastRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	depth, err := entity.ParseDepth(req.Depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.service.SummarizePodcast(detach(r), req.RSSURL, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, podcastResponse{
		Source:       entity.SourcePodcastEpisode.Label(),
		EpisodeTitle: summary.Metadata[entity.MetaEpisodeTitle],
		EpisodeURL:   summary.Metadata[entity.MetaEpisodeURL],
		Depth:        string(summary.Depth),
		Summary:      summary.Text,
	})
}

func (s *Server) handleUploadCookies(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.service.UploadCookies(detach(r), filename, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: "Cookies uploaded successfully",
	})
}

// detach はクライアント切断で抽出処理が中断されないようにする
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

var errTooLarge = errors.New("request body too large")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return entity.NewError(entity.KindInvalidInput, "invalid request body", err)
	}
	return nil
}

// readUpload はmultipartの"file"フィールドを読みます
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if r.ContentLength > s.maxUploadBytes {
		return "", nil, errTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, errTooLarge
		}
		return "", nil, entity.NewError(entity.KindInvalidInput, "invalid multipart form", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, entity.Errorf(entity.KindInvalidInput, "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, entity.NewError(entity.KindInvalidInput, "failed to read uploaded file", err)
	}
	return strings.TrimSpace(header.Filename), data, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", requestID(r.Context()), "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "request_id", requestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	kind, ok := entity.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case entity.KindInvalidInput, entity.KindUnsupportedInput, entity.KindUnsupportedFormat:
		return http.StatusBadRequest
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindSummarization:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

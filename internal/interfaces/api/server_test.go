package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contentSummarizer/internal/domain/entity"
)

type mockService struct {
	summarizeFunc func(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error)
	playlistFunc  func(ctx context.Context, url string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error)
	podcastFunc   func(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error)
	cookiesFunc   func(ctx context.Context, filename string, data []byte) error

	lastSource entity.ContentSource
	lastDepth  entity.SummaryDepth
}

func (m *mockService) Summarize(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error) {
	m.lastSource = src
	m.lastDepth = depth
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, src, depth)
	}
	return &entity.Summary{SourceType: src.Type, Depth: depth, Text: "summary", Metadata: map[string]string{}}, nil
}

func (m *mockService) SummarizePlaylist(ctx context.Context, url string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error) {
	m.lastDepth = depth
	return m.playlistFunc(ctx, url, depth)
}

func (m *mockService) SummarizePodcast(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error) {
	m.lastDepth = depth
	return m.podcastFunc(ctx, rssURL, depth)
}

func (m *mockService) UploadCookies(ctx context.Context, filename string, data []byte) error {
	if m.cookiesFunc != nil {
		return m.cookiesFunc(ctx, filename, data)
	}
	return nil
}

func newTestServer(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(svc, 1<<20, logger).Handler()
}

func doJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doMultipart(t *testing.T, h http.Handler, path, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		fw.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPing(t *testing.T) {
	h := newTestServer(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["status"] != "ok" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := newTestServer(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected incoming request id, got %q", got)
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	h := newTestServer(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestSummarizeURL(t *testing.T) {
	svc := &mockService{
		summarizeFunc: func(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error) {
			return &entity.Summary{
				SourceType: src.Type,
				Depth:      depth,
				Text:       "an article summary",
				Metadata:   map[string]string{entity.MetaTitle: "Title"},
			}, nil
		},
	}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-url", `{"url":"https://example.com/a","depth":"short"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["source"] != "Article" || body["url"] != "https://example.com/a" || body["depth"] != "short" {
		t.Errorf("unexpected body %v", body)
	}
	if body["summary"] != "an article summary" {
		t.Errorf("unexpected summary %v", body["summary"])
	}
	if meta, _ := body["metadata"].(map[string]any); meta["title"] != "Title" {
		t.Errorf("unexpected metadata %v", body["metadata"])
	}
	if svc.lastSource.Type != entity.SourceArticle {
		t.Errorf("expected article source, got %s", svc.lastSource.Type)
	}
}

func TestSummarizeURL_DefaultDepth(t *testing.T) {
	svc := &mockService{}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-url", `{"url":"https://youtu.be/X"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastDepth != entity.DepthMedium {
		t.Errorf("expected medium depth, got %s", svc.lastDepth)
	}
	if decode(t, rec)["source"] != "YouTube" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", entity.Errorf(entity.KindInvalidInput, "bad"), http.StatusBadRequest},
		{"unsupported input", entity.Errorf(entity.KindUnsupportedInput, "bad url"), http.StatusBadRequest},
		{"unsupported format", entity.Errorf(entity.KindUnsupportedFormat, "unsupported file type \".xls\""), http.StatusBadRequest},
		{"not found", entity.Errorf(entity.KindNotFound, "no episodes found in feed"), http.StatusNotFound},
		{"fetch", entity.Errorf(entity.KindFetch, "failed to fetch url: HTTP status 404"), http.StatusInternalServerError},
		{"transcription", entity.Errorf(entity.KindTranscription, "whisper failed"), http.StatusInternalServerError},
		{"summarization", entity.Errorf(entity.KindSummarization, "summarizer is not configured"), http.StatusBadGateway},
		{"untagged", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{
				summarizeFunc: func(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error) {
					return nil, tc.err
				},
			}
			h := newTestServer(svc)

			rec := doJSON(t, h, "/summarize-url", `{"url":"https://example.com/a"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if decode(t, rec)["detail"] != tc.err.Error() {
				t.Errorf("expected detail %q, got %s", tc.err.Error(), rec.Body.String())
			}
		})
	}
}

func TestSummarizeURL_BadRequests(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"url":`},
		{"invalid depth", `{"url":"https://example.com","depth":"extreme"}`},
		{"unsupported scheme", `{"url":"ftp://x"}`},
		{"missing url", `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(&mockService{})
			rec := doJSON(t, h, "/summarize-url", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSummarizeURL_MethodNotAllowed(t *testing.T) {
	h := newTestServer(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/summarize-url", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestSummarizeFile(t *testing.T) {
	svc := &mockService{}
	h := newTestServer(svc)

	rec := doMultipart(t, h, "/summarize-file?depth=detailed", "notes.txt", []byte("hello"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["source"] != "Uploaded File" || body["filename"] != "notes.txt" || body["depth"] != "detailed" {
		t.Errorf("unexpected body %v", body)
	}
	if svc.lastSource.Type != entity.SourceUploadedFile || string(svc.lastSource.Data) != "hello" {
		t.Errorf("unexpected source %+v", svc.lastSource)
	}
}

func TestSummarizeAudio_DepthFromForm(t *testing.T) {
	svc := &mockService{}
	h := newTestServer(svc)

	rec := doMultipart(t, h, "/summarize-audio", "talk.mp3", []byte("ID3"), map[string]string{"depth": "short"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["source"] != "Uploaded Audio" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if svc.lastSource.Type != entity.SourceUploadedAudio || svc.lastDepth != entity.DepthShort {
		t.Errorf("unexpected call %+v %s", svc.lastSource, svc.lastDepth)
	}
}

func TestSummarizeFile_MissingFile(t *testing.T) {
	h := newTestServer(&mockService{})

	rec := doMultipart(t, h, "/summarize-file", "", nil, map[string]string{"depth": "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decode(t, rec)["detail"] != "file is required" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestSummarizeFile_TooLarge(t *testing.T) {
	h := newTestServer(&mockService{})

	rec := doMultipart(t, h, "/summarize-file", "big.txt", bytes.Repeat([]byte("a"), 2<<20), nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestSummarizePlaylist(t *testing.T) {
	svc := &mockService{
		playlistFunc: func(ctx context.Context, url string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error) {
			return &entity.PlaylistSummaryBatch{
				PlaylistURL: url,
				Depth:       depth,
				Items: []entity.BatchItem{
					{VideoURL: "https://www.youtube.com/watch?v=a", Summary: &entity.Summary{Text: "first"}},
					{VideoURL: "https://www.youtube.com/watch?v=b", Err: errors.New("download failed")},
				},
			}, nil
		},
	}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-playlist", `{"url":"https://youtube.com/playlist?list=Y","depth":"short"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body playlistResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Source != "YouTube Playlist" || body.VideoCount != 2 || body.PlaylistURL != "https://youtube.com/playlist?list=Y" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Summaries[0].Summary != "first" || body.Summaries[0].Error != "" {
		t.Errorf("unexpected first item %+v", body.Summaries[0])
	}
	if body.Summaries[1].Error != "download failed" || body.Summaries[1].Summary != "" {
		t.Errorf("unexpected second item %+v", body.Summaries[1])
	}
}

func TestSummarizePlaylist_Empty(t *testing.T) {
	svc := &mockService{
		playlistFunc: func(ctx context.Context, url string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error) {
			return &entity.PlaylistSummaryBatch{PlaylistURL: url, Depth: depth}, nil
		},
	}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-playlist", `{"url":"https://youtube.com/playlist?list=Y"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"summaries":[]`) {
		t.Errorf("expected an empty summaries array, got %s", rec.Body.String())
	}
}

func TestSummarizePodcast(t *testing.T) {
	svc := &mockService{
		podcastFunc: func(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error) {
			if rssURL != "https://example.com/feed.xml" {
				t.Errorf("unexpected rss url %s", rssURL)
			}
			return &entity.Summary{
				SourceType: entity.SourcePodcastEpisode,
				Depth:      depth,
				Text:       "episode summary",
				Metadata: map[string]string{
					entity.MetaEpisodeTitle: "Episode 42",
					entity.MetaEpisodeURL:   "https://example.com/ep42",
				},
			}, nil
		},
	}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-podcast", `{"rss_url":"https://example.com/feed.xml"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["source"] != "Podcast RSS" || body["episode_title"] != "Episode 42" || body["episode_url"] != "https://example.com/ep42" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestSummarizePodcast_NotFound(t *testing.T) {
	svc := &mockService{
		podcastFunc: func(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error) {
			return nil, entity.Errorf(entity.KindNotFound, "no episodes found in feed")
		},
	}
	h := newTestServer(svc)

	rec := doJSON(t, h, "/summarize-podcast", `{"rss_url":"https://example.com/feed.xml"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUploadCookies(t *testing.T) {
	var gotName string
	var gotData []byte
	svc := &mockService{
		cookiesFunc: func(ctx context.Context, filename string, data []byte) error {
			gotName, gotData = filename, data
			if !strings.HasSuffix(filename, ".txt") {
				return entity.Errorf(entity.KindInvalidInput, "invalid file type. Please upload a .txt file")
			}
			return nil
		},
	}
	h := newTestServer(svc)

	rec := doMultipart(t, h, "/upload-cookies", "cookies.txt", []byte("# Netscape HTTP Cookie File"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["status"] != "success" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if gotName != "cookies.txt" || string(gotData) != "# Netscape HTTP Cookie File" {
		t.Errorf("unexpected call %q %q", gotName, gotData)
	}

	rec = doMultipart(t, h, "/upload-cookies", "cookies.json", []byte("{}"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-txt, got %d", rec.Code)
	}
}

func TestHandlers_DetachRequestContext(t *testing.T) {
	svc := &mockService{
		summarizeFunc: func(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error) {
			if ctx.Err() != nil {
				t.Errorf("expected detached context, got %v", ctx.Err())
			}
			return &entity.Summary{SourceType: src.Type, Depth: depth, Text: "ok"}, nil
		},
	}
	h := newTestServer(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/summarize-url", strings.NewReader(`{"url":"https://example.com"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

type mockArticleRepository struct {
	result *entity.ExtractionResult
	err    error
}

func (m *mockArticleRepository) FetchArticle(ctx context.Context, url string) (*entity.ExtractionResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockDocumentRepository struct {
	text string
	err  error
}

func (m *mockDocumentRepository) ExtractDocument(filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockAudioRepository struct {
	// failURLs のURLはダウンロード失敗にする
	failURLs map[string]bool
	calls    []string
	opts     []repository.AcquireOptions
}

func (m *mockAudioRepository) AcquireAudio(ctx context.Context, videoURL, dir string, opts repository.AcquireOptions) (string, error) {
	m.calls = append(m.calls, videoURL)
	m.opts = append(m.opts, opts)
	if m.failURLs[videoURL] {
		return "", entity.Errorf(entity.KindDownload, "video unavailable: %s", videoURL)
	}
	path := filepath.Join(dir, "audio.m4a")
	if err := os.WriteFile(path, []byte(videoURL), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type mockPlaylistRepository struct {
	urls []string
	err  error
}

func (m *mockPlaylistRepository) ResolvePlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	return m.urls, m.err
}

// mockTranscriber は音声ファイルの中身をそのまま文字起こし結果として返す
type mockTranscriber struct {
	err   error
	paths []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	m.paths = append(m.paths, audioPath)
	if m.err != nil {
		return "", m.err
	}
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}
	return "transcript of " + string(data), nil
}

type mockFeedRepository struct {
	episode *entity.Episode
	err     error
}

func (m *mockFeedRepository) LatestEpisode(ctx context.Context, rssURL string) (*entity.Episode, error) {
	return m.episode, m.err
}

type mockDownloader struct {
	err error
}

func (m *mockDownloader) Download(ctx context.Context, mediaURL, dir string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	path := filepath.Join(dir, "episode.mp3")
	if err := os.WriteFile(path, []byte(mediaURL), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type mockSummarizer struct {
	enabled bool
	err     error
	calls   int
	depths  []entity.SummaryDepth
}

func (m *mockSummarizer) Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	m.calls++
	m.depths = append(m.depths, depth)
	if m.err != nil {
		return "", m.err
	}
	return "summary(" + string(depth) + "): " + text, nil
}

func (m *mockSummarizer) IsEnabled() bool {
	return m.enabled
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockCache) SaveSummary(ctx context.Context, key, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = summary
	return nil
}

type mockCookieRepository struct {
	path  string
	saved []byte
	err   error
}

func (m *mockCookieRepository) Path(ctx context.Context) (string, error) {
	return m.path, nil
}

func (m *mockCookieRepository) Save(ctx context.Context, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.saved = data
	return nil
}

// mockTempRepository は払い出したディレクトリがすべて削除されたかを確認できる
type mockTempRepository struct {
	t    *testing.T
	root string
	dirs []*mockTempDir
}

func newMockTempRepository(t *testing.T) *mockTempRepository {
	return &mockTempRepository{t: t, root: t.TempDir()}
}

func (m *mockTempRepository) Acquire(prefix string) (repository.TempDir, error) {
	path, err := os.MkdirTemp(m.root, prefix+"-*")
	if err != nil {
		return nil, err
	}
	d := &mockTempDir{path: path}
	m.dirs = append(m.dirs, d)
	return d, nil
}

func (m *mockTempRepository) assertAllReleased() {
	m.t.Helper()
	for _, d := range m.dirs {
		if !d.released {
			m.t.Errorf("temp dir %s was not released", d.path)
		}
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		m.t.Fatalf("failed to read temp root: %v", err)
	}
	if len(entries) != 0 {
		m.t.Errorf("expected no leftover temp dirs, got %d", len(entries))
	}
}

type mockTempDir struct {
	path     string
	released bool
}

func (d *mockTempDir) Path() string { return d.path }

func (d *mockTempDir) Release() {
	d.released = true
	os.RemoveAll(d.path)
}

var errBoom = errors.New("boom")

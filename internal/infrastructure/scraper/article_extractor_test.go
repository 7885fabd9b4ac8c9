package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contentSummarizer/internal/domain/entity"
)

func newHTMLServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestArticleExtractor_FetchArticle_ArticleTag(t *testing.T) {
	page := `
	<!DOCTYPE html>
	<html>
	<head><title>Understanding Go Concurrency Patterns</title></head>
	<body>
		<header>Header content</header>
		<nav>Navigation</nav>
		<article>
			<h1>Article Title</h1>
			<p>This is the main content of the article.</p>
			<div class="ad">Buy now</div>
			<p>It contains important information.</p>
		</article>
		<footer>Footer content</footer>
		<script>console.log('test');</script>
	</body>
	</html>
	`
	server := newHTMLServer(t, http.StatusOK, page)

	extractor := NewArticleExtractor(5 * time.Second)
	res, err := extractor.FetchArticle(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "Article Title This is the main content of the article. It contains important information."
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if res.SourceType != entity.SourceArticle {
		t.Errorf("expected article source, got %s", res.SourceType)
	}
	if res.Metadata[entity.MetaTitle] != "Understanding Go Concurrency Patterns" {
		t.Errorf("expected title metadata, got %q", res.Metadata[entity.MetaTitle])
	}
	if res.Metadata[entity.MetaURL] != server.URL {
		t.Errorf("expected url metadata, got %q", res.Metadata[entity.MetaURL])
	}

	for _, unwanted := range []string{"console.log", "Navigation", "Footer", "Buy now", "Header content"} {
		if strings.Contains(res.Text, unwanted) {
			t.Errorf("expected %q to be removed", unwanted)
		}
	}
}

func TestArticleExtractor_FetchArticle_TopBlocks(t *testing.T) {
	page := `
	<html><body>
		<p>aa</p>
		<p>bbbbbb</p>
		<p>c</p>
		<p>dddddddd</p>
		<p>eeee</p>
		<p>fffff</p>
		<script>var x = 1;</script>
	</body></html>
	`
	server := newHTMLServer(t, http.StatusOK, page)

	extractor := NewArticleExtractor(0)
	res, err := extractor.FetchArticle(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "dddddddd bbbbbb fffff eeee aa"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
}

func TestArticleExtractor_FetchArticle_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantKind entity.ErrorKind
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     "Not Found",
			wantKind: entity.KindFetch,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     "boom",
			wantKind: entity.KindFetch,
		},
		{
			name:     "only boilerplate",
			status:   http.StatusOK,
			body:     "<html><body><nav>menu</nav><script>x()</script></body></html>",
			wantKind: entity.KindExtraction,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newHTMLServer(t, tc.status, tc.body)

			extractor := NewArticleExtractor(5 * time.Second)
			_, err := extractor.FetchArticle(context.Background(), server.URL)
			if !entity.IsKind(err, tc.wantKind) {
				t.Fatalf("expected %s error, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestArticleExtractor_FetchArticle_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<article>hello</article>"))
	}))
	defer server.Close()

	extractor := NewArticleExtractor(5 * time.Second)
	if _, err := extractor.FetchArticle(context.Background(), server.URL); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotUA != DefaultUserAgent {
		t.Errorf("expected User-Agent %q, got %q", DefaultUserAgent, gotUA)
	}
}

func TestArticleExtractor_FetchArticle_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("<article>late</article>"))
	}))
	defer server.Close()

	extractor := NewArticleExtractor(50 * time.Millisecond)
	_, err := extractor.FetchArticle(context.Background(), server.URL)
	if !entity.IsKind(err, entity.KindFetch) {
		t.Fatalf("expected fetch error on timeout, got %v", err)
	}
}

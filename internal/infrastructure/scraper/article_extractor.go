package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/html"
)

const (
	// DefaultUserAgent はサイト側のボットブロックを避けるためのブラウザ風UA
	DefaultUserAgent = "Mozilla/5.0 (compatible; ContentSummarizer/1.0)"

	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 5 << 20
	maxContentBlock = 5
)

// 本文抽出前に取り除く要素
const boilerplateSelector = "script, style, nav, header, footer, aside, form, noscript, iframe, .ad, .ads, .advertisement, [class*='sponsor']"

type webScraper struct {
	client    *http.Client
	userAgent string
}

// NewArticleExtractor は新しいArticleRepositoryを生成します
func NewArticleExtractor(timeout time.Duration) repository.ArticleRepository {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &webScraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
	}
}

// FetchArticle はURLから記事本文とタイトルを取得します
func (s *webScraper) FetchArticle(ctx context.Context, url string) (*entity.ExtractionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to create request", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to fetch url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, entity.Errorf(entity.KindFetch, "failed to fetch url: HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to read response body", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, entity.NewError(entity.KindExtraction, "failed to parse HTML", err)
	}

	content := extractMainContent(doc)
	if content == "" {
		return nil, entity.Errorf(entity.KindExtraction, "no content found at %s", url)
	}

	metadata := map[string]string{entity.MetaURL: url}
	if title := html.ExtractTitle(body, url); title != "" {
		metadata[entity.MetaTitle] = title
	}

	return entity.NewExtractionResult(entity.SourceArticle, content, metadata)
}

// extractMainContent はHTMLドキュメントから本文を抽出します
func extractMainContent(doc *goquery.Document) string {
	doc.Find(boilerplateSelector).Remove()

	if article := doc.Find("article").First(); article.Length() > 0 {
		if text := html.FlattenText(article); text != "" {
			return text
		}
	}

	// フォールバック: テキスト量の多いdiv/pを上位から連結
	type block struct {
		text   string
		length int
	}
	var blocks []block
	doc.Find("div, p").Each(func(_ int, sel *goquery.Selection) {
		text := html.FlattenText(sel)
		if text == "" {
			return
		}
		blocks = append(blocks, block{text: text, length: utf8.RuneCountInString(text)})
	})

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].length > blocks[j].length
	})

	if len(blocks) > maxContentBlock {
		blocks = blocks[:maxContentBlock]
	}

	var buf bytes.Buffer
	for i, b := range blocks {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(b.text)
	}
	return buf.String()
}

package media

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

const (
	userAgent        = "Mozilla/5.0 (compatible; ContentSummarizer/1.0)"
	defaultExtension = ".mp3"
	defaultMaxBytes  = int64(500 << 20)
	downloadFileStem = "episode"
)

type httpDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPDownloader はHTTPでメディアファイルを取得するMediaDownloaderを生成します
func NewHTTPDownloader(timeout time.Duration, maxBytes int64) repository.MediaDownloader {
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &httpDownloader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Download はdir/episode.<ext> に保存しそのパスを返します
func (d *httpDownloader) Download(ctx context.Context, mediaURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to download media", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", entity.Errorf(entity.KindDownload, "failed to download media: HTTP status %d", resp.StatusCode)
	}

	dest := filepath.Join(dir, downloadFileStem+extensionFor(mediaURL, resp.Header.Get("Content-Type")))
	f, err := os.Create(dest)
	if err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to create media file", err)
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, d.maxBytes+1))
	closeErr := f.Close()
	if err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to write media file", err)
	}
	if closeErr != nil {
		return "", entity.NewError(entity.KindDownload, "failed to close media file", closeErr)
	}
	if n > d.maxBytes {
		return "", entity.Errorf(entity.KindDownload, "media file exceeds %d bytes", d.maxBytes)
	}
	if n == 0 {
		return "", entity.Errorf(entity.KindDownload, "media file is empty")
	}

	return dest, nil
}

// extensionFor はURLの拡張子、なければContent-Typeから拡張子を決めます
func extensionFor(mediaURL, contentType string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 {
			return ext
		}
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case "audio/mpeg":
				return ".mp3"
			case "audio/mp4", "audio/x-m4a":
				return ".m4a"
			}
			if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
				return exts[0]
			}
		}
	}
	return defaultExtension
}

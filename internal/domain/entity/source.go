package entity

import (
	"path/filepath"
	"regexp"
	"strings"
)

// SourceType は入力コンテンツの種類
type SourceType string

const (
	SourceArticle         SourceType = "article"
	SourceYouTubeVideo    SourceType = "youtube_video"
	SourceYouTubePlaylist SourceType = "youtube_playlist"
	SourceUploadedFile    SourceType = "uploaded_file"
	SourceUploadedAudio   SourceType = "uploaded_audio"
	SourcePodcastEpisode  SourceType = "podcast_episode"
)

// Label is the human readable name used in API responses.
func (t SourceType) Label() string {
	switch t {
	case SourceArticle:
		return "Article"
	case SourceYouTubeVideo:
		return "YouTube"
	case SourceYouTubePlaylist:
		return "YouTube Playlist"
	case SourceUploadedFile:
		return "Uploaded File"
	case SourceUploadedAudio:
		return "Uploaded Audio"
	case SourcePodcastEpisode:
		return "Podcast RSS"
	default:
		return string(t)
	}
}

var httpURLPattern = regexp.MustCompile(`^https?://`)

// ClassifyURL maps a URL to a source type. First match wins.
func ClassifyURL(rawURL string) (SourceType, error) {
	u := strings.TrimSpace(rawURL)
	switch {
	case u == "":
		return "", Errorf(KindUnsupportedInput, "url is required")
	case strings.Contains(u, "youtube.com/playlist"):
		return SourceYouTubePlaylist, nil
	case strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be"):
		return SourceYouTubeVideo, nil
	case httpURLPattern.MatchString(u):
		return SourceArticle, nil
	default:
		return "", Errorf(KindUnsupportedInput, "unsupported url: %s", u)
	}
}

// ContentSource is one inbound piece of content. Build it with the New* constructors.
type ContentSource struct {
	Type     SourceType
	URL      string
	Filename string
	Data     []byte
}

// NewURLSource classifies rawURL and returns the matching source.
func NewURLSource(rawURL string) (ContentSource, error) {
	t, err := ClassifyURL(rawURL)
	if err != nil {
		return ContentSource{}, err
	}
	return ContentSource{Type: t, URL: strings.TrimSpace(rawURL)}, nil
}

// NewVideoSource は再生リストから展開された動画。分類は行わない
func NewVideoSource(videoURL string) ContentSource {
	return ContentSource{Type: SourceYouTubeVideo, URL: strings.TrimSpace(videoURL)}
}

// NewUploadedFile は拡張子で抽出方法が決まるアップロードファイル
func NewUploadedFile(filename string, data []byte) ContentSource {
	return ContentSource{Type: SourceUploadedFile, Filename: filename, Data: data}
}

// NewUploadedAudio は文字起こし対象のアップロード音声
func NewUploadedAudio(filename string, data []byte) ContentSource {
	return ContentSource{Type: SourceUploadedAudio, Filename: filename, Data: data}
}

// NewPodcastSource wraps a podcast RSS feed URL. Only http(s) feeds are accepted.
func NewPodcastSource(rssURL string) (ContentSource, error) {
	u := strings.TrimSpace(rssURL)
	if !httpURLPattern.MatchString(u) {
		return ContentSource{}, Errorf(KindUnsupportedInput, "unsupported rss url: %s", u)
	}
	return ContentSource{Type: SourcePodcastEpisode, URL: u}, nil
}

// Extension returns the lower-cased extension of the declared filename, including the dot.
func (s ContentSource) Extension() string {
	return strings.ToLower(filepath.Ext(s.Filename))
}

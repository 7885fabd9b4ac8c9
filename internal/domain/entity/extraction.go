package entity

import "strings"

// Metadata keys attached to extraction results.
const (
	MetaTitle        = "title"
	MetaURL          = "url"
	MetaFilename     = "filename"
	MetaEpisodeTitle = "episode_title"
	MetaEpisodeURL   = "episode_url"
)

// ExtractionResult は抽出済みの正規化テキスト
type ExtractionResult struct {
	SourceType SourceType
	Text       string
	Metadata   map[string]string
}

// NewExtractionResult normalizes text and fails if nothing is left.
func NewExtractionResult(sourceType SourceType, text string, metadata map[string]string) (*ExtractionResult, error) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil, Errorf(KindExtraction, "no text extracted from %s", sourceType)
	}
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &ExtractionResult{
		SourceType: sourceType,
		Text:       normalized,
		Metadata:   metadata,
	}, nil
}

// NormalizeText collapses every whitespace run to a single space and trims.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

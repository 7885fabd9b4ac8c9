package document

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

type fileExtractor struct{}

// NewExtractor はアップロードファイル用のDocumentRepositoryを生成します
func NewExtractor() repository.DocumentRepository {
	return &fileExtractor{}
}

// ExtractDocument は拡張子でフォーマットを判定しテキストを抽出します。中身による判定はしない
func (e *fileExtractor) ExtractDocument(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = extractPlainText(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", entity.Errorf(entity.KindUnsupportedFormat, "unsupported file type %q", ext)
	}
	if err != nil {
		return "", err
	}

	normalized := entity.NormalizeText(text)
	if normalized == "" {
		return "", entity.Errorf(entity.KindExtraction, "no text extracted from %s", filename)
	}
	return normalized, nil
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", entity.Errorf(entity.KindExtraction, "text file is not valid UTF-8")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

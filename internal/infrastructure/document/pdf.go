package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"contentSummarizer/internal/domain/entity"
)

// extractPDF はページごとのプレーンテキストを空白区切りで連結します
func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", entity.Errorf(entity.KindExtraction, "pdf content is empty")
	}

	// ledongthuc/pdfは壊れたファイルでpanicすることがある
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = entity.NewError(entity.KindExtraction, "failed to parse pdf", fmt.Errorf("%v", r))
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", entity.NewError(entity.KindExtraction, "failed to parse pdf", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", entity.NewError(entity.KindExtraction, fmt.Sprintf("failed to read pdf page %d", i), err)
		}
		if t := strings.TrimSpace(pageText); t != "" {
			pages = append(pages, t)
		}
	}

	return strings.Join(pages, " "), nil
}

package entity

import (
	"strings"
	"time"
)

// SummaryDepth は要約の詳細度
type SummaryDepth string

const (
	DepthShort    SummaryDepth = "short"
	DepthMedium   SummaryDepth = "medium"
	DepthDetailed SummaryDepth = "detailed"

	DefaultDepth = DepthMedium
)

// ParseDepth validates a depth label. Empty input defaults to medium; anything else
// outside the allow-list is rejected.
func ParseDepth(raw string) (SummaryDepth, error) {
	switch SummaryDepth(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return DefaultDepth, nil
	case DepthShort:
		return DepthShort, nil
	case DepthMedium:
		return DepthMedium, nil
	case DepthDetailed:
		return DepthDetailed, nil
	default:
		return "", Errorf(KindInvalidInput, "invalid depth %q: must be one of short, medium, detailed", raw)
	}
}

// Summary is the structured result returned to callers.
type Summary struct {
	SourceType SourceType
	Depth      SummaryDepth
	Text       string
	Metadata   map[string]string
}

// BatchItem は再生リスト内の1動画の結果。SummaryとErrのどちらか一方が入る
type BatchItem struct {
	VideoURL string
	Summary  *Summary
	Err      error
}

// PlaylistSummaryBatch keeps playlist order; failed items do not abort the batch.
type PlaylistSummaryBatch struct {
	PlaylistURL string
	Depth       SummaryDepth
	Items       []BatchItem
}

func (b *PlaylistSummaryBatch) Succeeded() int {
	n := 0
	for _, item := range b.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

func (b *PlaylistSummaryBatch) Failed() int {
	return len(b.Items) - b.Succeeded()
}

// Episode はポッドキャストフィードの1エピソード
type Episode struct {
	Title     string
	Link      string
	AudioURL  string
	Published time.Time
}

package youtube

import (
	"context"
	"encoding/json"
	"strings"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/executor"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// flatPlaylist は yt-dlp --flat-playlist -J の出力のうち必要な部分
type flatPlaylist struct {
	Title   string `json:"title"`
	Entries []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"entries"`
}

type playlistResolver struct {
	exec   executor.Executor
	binary string
}

// NewPlaylistResolver はメディアをダウンロードせずに再生リストを展開するPlaylistRepositoryを生成します
func NewPlaylistResolver(exec executor.Executor, binary string) repository.PlaylistRepository {
	if binary == "" {
		binary = DefaultBinary
	}
	return &playlistResolver{exec: exec, binary: binary}
}

// ResolvePlaylist は再生リスト順に動画URLを返します。空のリストはエラーではない
func (r *playlistResolver) ResolvePlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	out, err := r.exec.Execute(ctx, r.binary, "--flat-playlist", "-J", playlistURL)
	if err != nil {
		return nil, entity.NewError(entity.KindResolution, "failed to list playlist", err)
	}

	var playlist flatPlaylist
	if err := json.Unmarshal([]byte(out), &playlist); err != nil {
		return nil, entity.NewError(entity.KindResolution, "failed to parse playlist listing", err)
	}

	urls := make([]string, 0, len(playlist.Entries))
	for _, e := range playlist.Entries {
		if u := entryURL(e.ID, e.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func entryURL(id, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return rawURL
	case id != "":
		return watchURLPrefix + id
	case rawURL != "":
		return watchURLPrefix + rawURL
	default:
		return ""
	}
}

package repository

import "context"

// AcquireOptions is passed per call so no download setting lives in global state.
type AcquireOptions struct {
	// CookieFile is attached to the request when non-empty.
	CookieFile string
}

// AudioRepository downloads the best audio stream of a video into dir and returns the file path.
type AudioRepository interface {
	AcquireAudio(ctx context.Context, videoURL, dir string, opts AcquireOptions) (string, error)
}

// PlaylistRepository lists member video URLs without downloading media.
type PlaylistRepository interface {
	ResolvePlaylist(ctx context.Context, playlistURL string) ([]string, error)
}

// MediaDownloader fetches a remote media file (podcast enclosure) into dir.
type MediaDownloader interface {
	Download(ctx context.Context, mediaURL, dir string) (string, error)
}

// TranscriberRepository は音声ファイルをテキストに変換する
type TranscriberRepository interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

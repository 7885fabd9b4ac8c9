package youtube

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/executor"
)

// DefaultBinary はyt-dlpの実行ファイル名
const DefaultBinary = "yt-dlp"

// 同じディレクトリに複数の音声ファイルが残ったときの優先順
var audioPreference = []string{".m4a", ".webm", ".opus", ".mp3"}

type audioDownloader struct {
	exec   executor.Executor
	binary string
}

// NewAudioDownloader はyt-dlpで音声を取得するAudioRepositoryを生成します
func NewAudioDownloader(exec executor.Executor, binary string) repository.AudioRepository {
	if binary == "" {
		binary = DefaultBinary
	}
	return &audioDownloader{exec: exec, binary: binary}
}

// AcquireAudio はdirに audio.<ext> を保存しそのパスを返します
func (d *audioDownloader) AcquireAudio(ctx context.Context, videoURL, dir string, opts repository.AcquireOptions) (string, error) {
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-progress",
		"-o", filepath.Join(dir, "audio.%(ext)s"),
	}
	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}
	args = append(args, videoURL)

	if _, err := d.exec.Execute(ctx, d.binary, args...); err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to download audio", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "audio.*"))
	if err != nil {
		return "", entity.NewError(entity.KindDownload, "failed to locate downloaded audio", err)
	}

	path := pickAudioFile(matches)
	if path == "" {
		return "", entity.Errorf(entity.KindDownload, "no audio file downloaded for %s", videoURL)
	}
	return path, nil
}

// pickAudioFile は優先順で1つ選ぶ。一覧にない拡張子は名前順で後ろに回す
func pickAudioFile(paths []string) string {
	candidates := make([]string, 0, len(paths))
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".part" || ext == ".ytdl" || ext == ".tmp" {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return ""
	}

	rank := func(p string) int {
		ext := strings.ToLower(filepath.Ext(p))
		for i, pref := range audioPreference {
			if ext == pref {
				return i
			}
		}
		return len(audioPreference)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := rank(candidates[i]), rank(candidates[j])
		if ri != rj {
			return ri < rj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

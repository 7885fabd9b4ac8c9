package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/executor"
)

const (
	defaultWhisperBinary = "whisper-cli"
	defaultFFmpegBinary  = "ffmpeg"
	defaultLanguage      = "auto"
	defaultThreads       = 4
)

type whisperTranscriber struct {
	exec          executor.Executor
	whisperBinary string
	ffmpegBinary  string
	modelPath     string
	language      string
	threads       int
}

// NewWhisperTranscriber はffmpeg + whisper.cppで文字起こしするTranscriberRepositoryを生成します
func NewWhisperTranscriber(cfg Config, exec executor.Executor) (repository.TranscriberRepository, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("whisper model path is required")
	}

	t := &whisperTranscriber{
		exec:          exec,
		whisperBinary: cfg.WhisperBinary,
		ffmpegBinary:  cfg.FFmpegBinary,
		modelPath:     cfg.ModelPath,
		language:      cfg.Language,
		threads:       cfg.Threads,
	}
	if t.whisperBinary == "" {
		t.whisperBinary = defaultWhisperBinary
	}
	if t.ffmpegBinary == "" {
		t.ffmpegBinary = defaultFFmpegBinary
	}
	if t.language == "" {
		t.language = defaultLanguage
	}
	if t.threads <= 0 {
		t.threads = defaultThreads
	}
	return t, nil
}

// Transcribe は音声を16kHzモノラルWAVにしてからwhisper-cliに渡します。中間ファイルは音声と同じディレクトリに置く
func (t *whisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	wavPath, err := t.convertToWAV(ctx, audioPath)
	if err != nil {
		return "", err
	}

	prefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	args := []string{
		"-m", t.modelPath,
		"-f", wavPath,
		"-l", t.language,
		"-t", strconv.Itoa(t.threads),
		"-nt",
		"-otxt",
		"-of", prefix,
	}
	if _, err := t.exec.Execute(ctx, t.whisperBinary, args...); err != nil {
		return "", entity.NewError(entity.KindTranscription, "whisper transcription failed", err)
	}

	data, err := os.ReadFile(prefix + ".txt")
	if err != nil {
		return "", entity.NewError(entity.KindTranscription, "failed to read whisper output", err)
	}

	text := entity.NormalizeText(string(data))
	if text == "" {
		return "", entity.Errorf(entity.KindTranscription, "empty transcript for %s", filepath.Base(audioPath))
	}
	return text, nil
}

func (t *whisperTranscriber) convertToWAV(ctx context.Context, audioPath string) (string, error) {
	wavPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_16k.wav"

	// -vn: 映像なし, -ar 16000 -ac 1: whisper向けの16kHzモノラル
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		wavPath,
	}
	if _, err := t.exec.Execute(ctx, t.ffmpegBinary, args...); err != nil {
		return "", entity.NewError(entity.KindTranscription, "ffmpeg audio conversion failed", err)
	}
	return wavPath, nil
}

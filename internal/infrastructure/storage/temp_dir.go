package storage

import (
	"fmt"
	"os"
	"sync"

	"contentSummarizer/internal/domain/repository"
)

type tempStore struct {
	root string
}

// NewTempRepository はroot配下にリクエスト単位の作業ディレクトリを作成します。rootが空ならOSの既定
func NewTempRepository(root string) repository.TempRepository {
	return &tempStore{root: root}
}

func (s *tempStore) Acquire(prefix string) (repository.TempDir, error) {
	if s.root != "" {
		if err := os.MkdirAll(s.root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create temp root: %w", err)
		}
	}

	path, err := os.MkdirTemp(s.root, prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &tempDir{path: path}, nil
}

type tempDir struct {
	path string
	once sync.Once
}

func (d *tempDir) Path() string {
	return d.path
}

// Release はディレクトリごと削除します。複数回呼んでも安全
func (d *tempDir) Release() {
	d.once.Do(func() {
		_ = os.RemoveAll(d.path)
	})
}

package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileInfo describes a stored file as the storage backend sees it.
type FileInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Storage is the file-storage capability the CRM consumes. A Drive-backed
// implementation satisfies the same contract as the local one below.
type Storage interface {
	EnsureFolder(ctx context.Context, owner string) (string, error)
	ListFolder(ctx context.Context, folderID string) ([]FileInfo, error)
	Upload(ctx context.Context, folderID string, r io.Reader, name, mimeType string) (FileInfo, error)
	Move(ctx context.Context, fileID, destFolderID string) error
}

// DiskStorage keeps files under baseDir/<folder>/<fileID>__<name>.
type DiskStorage struct {
	baseDir string
}

func NewDiskStorage(baseDir string) *DiskStorage {
	if baseDir == "" {
		baseDir = "./storage"
	}
	return &DiskStorage{baseDir: baseDir}
}

func (s *DiskStorage) EnsureFolder(ctx context.Context, owner string) (string, error) {
	folderID := sanitize(owner)
	if folderID == "" {
		folderID = uuid.NewString()
	}
	if err := os.MkdirAll(filepath.Join(s.baseDir, folderID), 0o755); err != nil {
		return "", err
	}
	return folderID, nil
}

func (s *DiskStorage) ListFolder(ctx context.Context, folderID string) ([]FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, folderID))
	if os.IsNotExist(err) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		id, name, ok := strings.Cut(e.Name(), "__")
		if !ok {
			continue
		}
		files = append(files, FileInfo{ID: id, Name: name, Size: info.Size()})
	}
	return files, nil
}

func (s *DiskStorage) Upload(ctx context.Context, folderID string, r io.Reader, name, mimeType string) (FileInfo, error) {
	fileID := uuid.NewString()
	path := filepath.Join(s.baseDir, folderID, fileID+"__"+sanitize(name))

	f, err := os.Create(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{ID: fileID, Name: name, MimeType: mimeType, Size: size}, nil
}

func (s *DiskStorage) Move(ctx context.Context, fileID, destFolderID string) error {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "*", fileID+"__*"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("file %s not found", fileID)
	}

	src := matches[0]
	if err := os.MkdirAll(filepath.Join(s.baseDir, destFolderID), 0o755); err != nil {
		return err
	}
	return os.Rename(src, filepath.Join(s.baseDir, destFolderID, filepath.Base(src)))
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

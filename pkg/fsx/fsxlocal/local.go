package fsxlocal

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx"
)

// LocalFileSystem implements fsx.FileSystem using local disk
type LocalFileSystem struct {
	basePath string // Root directory for all files
}

var _ fsx.FileSystem = (*LocalFileSystem)(nil)

// NewLocalFileSystem creates a new local file system rooted at basePath,
// creating the directory if needed.
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errx.Wrap(err, "failed to create base directory", errx.TypeInternal).
			WithDetail("path", basePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errx.Wrap(err, "failed to resolve absolute path", errx.TypeInternal).
			WithDetail("path", basePath)
	}

	return &LocalFileSystem{basePath: absPath}, nil
}

// ============================================================================
// FileReader Implementation
// ============================================================================

func (fs *LocalFileSystem) ReadFile(_ context.Context, path string) ([]byte, error) {
	fullPath, err := fs.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fsx.ErrFileNotFound(path)
		}
		return nil, fsx.ErrReadFailed(path, err)
	}
	return data, nil
}

// List returns the regular files under dir, recursively, sorted by name.
func (fs *LocalFileSystem) List(_ context.Context, dir string) ([]fsx.FileInfo, error) {
	root, err := fs.fullPath(dir)
	if err != nil {
		return nil, err
	}

	var out []fsx.FileInfo
	walkErr := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		out = append(out, fsx.FileInfo{
			Name:        filepath.ToSlash(rel),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			ContentType: fsx.ContentType(p),
		})
		return nil
	})
	if walkErr != nil {
		if os.IsNotExist(walkErr) {
			return []fsx.FileInfo{}, nil
		}
		return nil, fsx.ErrReadFailed(dir, walkErr)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (fs *LocalFileSystem) Exists(_ context.Context, path string) (bool, error) {
	fullPath, err := fs.fullPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fsx.ErrReadFailed(path, err)
	}
	return true, nil
}

// ============================================================================
// FileWriter Implementation
// ============================================================================

func (fs *LocalFileSystem) WriteFile(_ context.Context, path string, data []byte) error {
	fullPath, err := fs.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fsx.ErrWriteFailed(path, err)
	}

	// Write to a temp file first so readers never see a partial report.
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fsx.ErrWriteFailed(path, err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return fsx.ErrWriteFailed(path, err)
	}
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// fullPath resolves path under the base directory, rejecting escapes.
func (fs *LocalFileSystem) fullPath(path string) (string, error) {
	full := filepath.Join(fs.basePath, filepath.FromSlash(path))
	if full != fs.basePath && !strings.HasPrefix(full, fs.basePath+string(filepath.Separator)) {
		return "", fsx.ErrInvalidPath(path)
	}
	return full, nil
}

// BasePath returns the root directory
func (fs *LocalFileSystem) BasePath() string {
	return fs.basePath
}

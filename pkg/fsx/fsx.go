// Package fsx abstracts the small file store the queue writes batch
// reports to. Paths are always slash-separated and relative to the store
// root.
package fsx

import (
	"context"
	"path"
	"time"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	Name        string    // Path relative to the listed directory
	Size        int64     // File size in bytes
	ModTime     time.Time // Modification time
	ContentType string    // MIME type (when available)
}

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, dir string) ([]FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter provides write operations
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// FileSystem combines all file operations
type FileSystem interface {
	FileReader
	FileWriter
}

// Join joins path elements with forward slashes
func Join(elem ...string) string {
	return path.Join(elem...)
}

// ContentType guesses a MIME type from the file extension
func ContentType(p string) string {
	switch path.Ext(p) {
	case ".json":
		return "application/json"
	case ".txt", ".log":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".xml":
		return "application/xml"
	case ".gz":
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}

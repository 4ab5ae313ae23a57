package export

import (
	"context"
	"path/filepath"

	"github.com/dmitrijs2005/plaquekeeper/internal/filex"
)

// FileExporter writes images into Dir, creating it on first use.
type FileExporter struct {
	Dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir}
}

func (e *FileExporter) Backend() string { return "file" }

func (e *FileExporter) Export(ctx context.Context, name string, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(e.Dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

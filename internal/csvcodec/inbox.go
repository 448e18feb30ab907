package csvcodec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessedDir is the inbox subdirectory that imported files are moved to.
const ProcessedDir = "processed"

// FileInfo describes a CSV file waiting in an inbox directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files directly inside dir. A missing dir is empty.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves dir/fileName to dir/processed/fileName.
func MarkProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(filepath.Join(dir, fileName), filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sae/internal/structures"
)

// DeliverySinkInterface hands a finished artifact to the user. The
// default sink drops it into the configured output directory.
type DeliverySinkInterface interface {
	Deliver(srcPath string, filename string) (string, error)
}

type FileSink struct {
	outputDir string
}

func NewFileSink(conf *structures.Config) DeliverySinkInterface {
	return &FileSink{outputDir: conf.Export.OutputDir}
}

// Deliver copies the artifact into the output directory under its final
// name. Writes go through a temp file so a crash never leaves a partial
// artifact behind.
func (s *FileSink) Deliver(srcPath string, filename string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	finalPath := filepath.Join(s.outputDir, filename)
	tmpPath := finalPath + ".tmp"

	dst, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("sync artifact: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize artifact: %w", err)
	}
	return finalPath, nil
}

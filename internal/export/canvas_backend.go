package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"

	"sae/internal/models"
	"sae/internal/providers"
)

// CanvasBackend renders segments in-process with no external binary.
// Image entries become fixed-length MJPEG clips built from one
// pre-composed frame. Video sources cannot be decoded here and fail
// per segment, so mixed selections still produce a degraded export.
// It deliberately does not implement ConcatenatorInterface.
type CanvasBackend struct {
	compositor *Compositor
	logger     providers.Logger
}

func NewCanvasBackend(compositor *Compositor, logger providers.Logger) *CanvasBackend {
	return &CanvasBackend{compositor: compositor, logger: logger}
}

func (b *CanvasBackend) Name() string {
	return "canvas"
}

func (b *CanvasBackend) Extension() string {
	return "avi"
}

// Initialize never fails; the fallback must always be available.
func (b *CanvasBackend) Initialize(ctx context.Context) error {
	return nil
}

func (b *CanvasBackend) RenderSegment(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string, seq int) (*Segment, error) {
	if entry.Type == models.MediaVideo {
		return nil, fmt.Errorf("%s: %w", entry.Filename, ErrVideoUnsupported)
	}

	frame, err := b.composeStill(entry, overlay)
	if err != nil {
		return nil, err
	}
	encoded, err := b.compositor.EncodeJPEG(frame, 85)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.%s", seq, b.Extension()))
	aw, err := mjpeg.New(outPath, CanvasWidth, CanvasHeight, captureFPS)
	if err != nil {
		return nil, fmt.Errorf("create segment writer: %w", err)
	}

	// The frame is composed once and repeated for the clip duration.
	frames := ImageClipSeconds * captureFPS
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			aw.Close()
			os.Remove(outPath)
			return nil, err
		}
		if err := aw.AddFrame(encoded); err != nil {
			aw.Close()
			return nil, fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("finalize segment: %w", err)
	}
	return &Segment{Path: outPath, Type: entry.Type}, nil
}

func (b *CanvasBackend) ExtractFrame(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string) (image.Image, error) {
	if entry.Type == models.MediaVideo {
		return nil, fmt.Errorf("%s: %w", entry.Filename, ErrVideoUnsupported)
	}
	return b.composeStill(entry, overlay)
}

func (b *CanvasBackend) composeStill(entry *models.MediaEntry, overlay image.Image) (image.Image, error) {
	media, err := loadRefImage(entry.Ref)
	if err != nil {
		return nil, err
	}
	return b.compositor.ComposeFrame(media, overlay), nil
}

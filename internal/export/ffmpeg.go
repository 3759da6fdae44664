package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/structures"
)

// scaleFilter letterboxes any source onto the portrait canvas before
// the overlay is stamped at the origin.
var scaleFilter = fmt.Sprintf(
	"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black[bg];[bg][1:v]overlay=0:0",
	CanvasWidth, CanvasHeight, CanvasWidth, CanvasHeight,
)

// FFmpegBackend shells out to an ffmpeg binary. It handles both media
// types and supports lossless concatenation.
type FFmpegBackend struct {
	ffmpegPath string
	logger     providers.Logger
}

func NewFFmpegBackend(conf *structures.Config, logger providers.Logger) *FFmpegBackend {
	path := conf.Export.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegBackend{ffmpegPath: path, logger: logger}
}

func (b *FFmpegBackend) Name() string {
	return "ffmpeg"
}

func (b *FFmpegBackend) Extension() string {
	return "mp4"
}

// Initialize resolves the binary and runs a version probe.
func (b *FFmpegBackend) Initialize(ctx context.Context) error {
	resolved, err := exec.LookPath(b.ffmpegPath)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	b.ffmpegPath = resolved

	if err := b.run(ctx, "-version"); err != nil {
		return fmt.Errorf("ffmpeg probe failed: %w", err)
	}
	return nil
}

func (b *FFmpegBackend) RenderSegment(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string, seq int) (*Segment, error) {
	input, err := stageInput(entry, workDir, seq)
	if err != nil {
		return nil, err
	}

	overlayPath := filepath.Join(workDir, fmt.Sprintf("overlay_%03d.png", seq))
	if err := writePNG(overlayPath, overlay); err != nil {
		return nil, err
	}

	outPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.%s", seq, b.Extension()))

	var args []string
	if entry.Type == models.MediaImage {
		args = []string{
			"-y",
			"-loop", "1",
			"-i", input,
			"-i", overlayPath,
			"-filter_complex", scaleFilter,
			"-t", fmt.Sprintf("%d", ImageClipSeconds),
			"-r", fmt.Sprintf("%d", captureFPS),
			"-pix_fmt", "yuv420p",
			"-preset", "fast",
			outPath,
		}
	} else {
		args = []string{
			"-y",
			"-i", input,
			"-i", overlayPath,
			"-filter_complex", scaleFilter,
			"-c:a", "copy",
			"-pix_fmt", "yuv420p",
			"-preset", "fast",
			outPath,
		}
	}

	if err := b.run(ctx, args...); err != nil {
		return nil, fmt.Errorf("render %s: %w", entry.Filename, err)
	}
	return &Segment{Path: outPath, Type: entry.Type}, nil
}

// Concatenate merges segments without re-encoding via the concat
// demuxer.
func (b *FFmpegBackend) Concatenate(ctx context.Context, segments []string, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), "concat_list.txt")

	var list strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&list, "file '%s'\n", seg)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	err := b.run(ctx,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("concatenate %d segments: %w", len(segments), err)
	}
	return nil
}

// ExtractFrame decodes the first frame of the entry and composes it
// with the overlay.
func (b *FFmpegBackend) ExtractFrame(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string) (image.Image, error) {
	input, err := stageInput(entry, workDir, 0)
	if err != nil {
		return nil, err
	}

	framePath := filepath.Join(workDir, "frame.png")
	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		CanvasWidth, CanvasHeight, CanvasWidth, CanvasHeight)
	err = b.run(ctx,
		"-y",
		"-i", input,
		"-frames:v", "1",
		"-vf", filter,
		framePath,
	)
	if err != nil {
		return nil, fmt.Errorf("extract frame from %s: %w", entry.Filename, err)
	}

	f, err := os.Open(framePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode extracted frame: %w", err)
	}
	return stampOverlay(frame, overlay), nil
}

func (b *FFmpegBackend) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, b.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, tailLines(stderr.String(), 3))
	}
	return nil
}

// stageInput copies the entry bytes into the work directory so ffmpeg
// reads a local file regardless of where the ref resolves to.
func stageInput(entry *models.MediaEntry, workDir string, seq int) (string, error) {
	rc, err := entry.Ref.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", entry.Filename, err)
	}
	defer rc.Close()

	dst := filepath.Join(workDir, fmt.Sprintf("input_%03d%s", seq, filepath.Ext(entry.Filename)))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return "", fmt.Errorf("stage %s: %w", entry.Filename, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write overlay: %w", err)
	}
	return f.Close()
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

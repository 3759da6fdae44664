package export

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/structures"
)

var (
	// ErrBackendUnavailable means no backend could render at all.
	ErrBackendUnavailable = errors.New("no render backend available")
	// ErrVideoUnsupported is returned by the raster fallback for video
	// sources it cannot decode.
	ErrVideoUnsupported = errors.New("video sources are not supported by the fallback renderer")
	// ErrNoRenderableContent means every segment of a job failed.
	ErrNoRenderableContent = errors.New("no renderable content")
	// ErrJobActive means an export is already running.
	ErrJobActive = errors.New("an export job is already active")
)

// Segment is one rendered clip sitting in the job work directory.
type Segment struct {
	Path string
	Type models.MediaType
}

// BackendInterface renders a single story into a playable segment.
type BackendInterface interface {
	// Name identifies the backend in status payloads and logs.
	Name() string
	// Initialize probes the backend once. An error marks it unusable.
	Initialize(ctx context.Context) error
	// RenderSegment composes the entry with its overlay into a clip
	// under workDir.
	RenderSegment(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string, seq int) (*Segment, error)
	// ExtractFrame returns a fully composed still of the entry's first
	// visible frame.
	ExtractFrame(ctx context.Context, entry *models.MediaEntry, overlay image.Image, workDir string) (image.Image, error)
	// Extension is the container extension of rendered segments.
	Extension() string
}

// ConcatenatorInterface is implemented by backends that can merge
// segments into one file. The fallback backend does not.
type ConcatenatorInterface interface {
	Concatenate(ctx context.Context, segments []string, outPath string) error
}

// BackendSelector picks the render backend for the whole process. The
// first selection probes the full backend; the outcome is memoized, so
// a failed probe is never retried and every later job goes straight to
// the fallback.
type BackendSelector struct {
	conf     *structures.Config
	logger   providers.Logger
	full     BackendInterface
	fallback BackendInterface

	once     sync.Once
	selected BackendInterface
}

func NewBackendSelector(conf *structures.Config, logger providers.Logger, full *FFmpegBackend, fallback *CanvasBackend) *BackendSelector {
	return &BackendSelector{
		conf:     conf,
		logger:   logger,
		full:     full,
		fallback: fallback,
	}
}

// Select returns the memoized backend, probing on first use.
func (s *BackendSelector) Select(ctx context.Context) BackendInterface {
	s.once.Do(func() {
		timeout := s.conf.Export.InitTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.full.Initialize(probeCtx); err != nil {
			s.logger.Warnf(providers.TypeExport, "backend %s unavailable, using %s: %s", s.full.Name(), s.fallback.Name(), err.Error())
			s.selected = s.fallback
			return
		}
		s.logger.Infof(providers.TypeExport, "render backend: %s", s.full.Name())
		s.selected = s.full
	})
	return s.selected
}

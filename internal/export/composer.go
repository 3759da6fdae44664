package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/services"
	"sae/internal/structures"
)

type JobState string

const (
	StateIdle         JobState = "idle"
	StateInitializing JobState = "initializing"
	StateRendering    JobState = "rendering"
	StateCombining    JobState = "combining"
	StateDownloading  JobState = "downloading"
	StateDone         JobState = "done"
	StateFailed       JobState = "failed"
)

type JobType string

const (
	// JobCapture renders one story as a standalone clip.
	JobCapture JobType = "capture"
	// JobScreenshot renders one story as a still PNG.
	JobScreenshot JobType = "screenshot"
	// JobExperience renders a selection and combines it into one file.
	JobExperience JobType = "experience"
)

type JobRequest struct {
	Type     JobType
	Grouping GroupingType
	Username string
	Date     string
	Entries  []*models.MediaEntry
}

type JobStatus struct {
	Id       string   `json:"id"`
	State    JobState `json:"state"`
	Percent  int      `json:"percent"`
	Stage    string   `json:"stage"`
	Backend  string   `json:"backend,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Artifact string   `json:"artifact,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type BackendSelectorInterface interface {
	Select(ctx context.Context) BackendInterface
}

type ComposerInterface interface {
	Start(req *JobRequest) (string, error)
	Status() JobStatus
	Cancel()
	Close()
}

// Composer runs export jobs. At most one job is active at a time; a
// second Start while one runs is rejected so callers can surface a
// busy response.
type Composer struct {
	config     *structures.Config
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	service    services.ArchiveServiceInterface
	compositor *Compositor
	selector   BackendSelectorInterface
	sink       DeliverySinkInterface

	jobSeq atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	status  JobStatus
	wg      sync.WaitGroup
}

func NewComposer(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	service services.ArchiveServiceInterface,
	compositor *Compositor,
	selector BackendSelectorInterface,
	sink DeliverySinkInterface,
) ComposerInterface {
	return &Composer{
		config:     conf,
		logger:     logger,
		metrics:    metrics,
		service:    service,
		compositor: compositor,
		selector:   selector,
		sink:       sink,
		status:     JobStatus{State: StateIdle},
	}
}

// Start launches a job and returns its id. Returns ErrJobActive when a
// job is already running and ErrNoRenderableContent for an empty
// selection.
func (c *Composer) Start(req *JobRequest) (string, error) {
	if len(req.Entries) == 0 {
		return "", ErrNoRenderableContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return "", ErrJobActive
	}

	id := fmt.Sprintf("export-%d", c.jobSeq.Inc())
	ctx, cancel := context.WithCancel(context.Background())

	c.running = true
	c.cancel = cancel
	c.status = JobStatus{
		Id:      id,
		State:   StateInitializing,
		Percent: 0,
		Stage:   "Initializing export",
	}

	c.wg.Add(1)
	go c.run(ctx, req)
	return id, nil
}

func (c *Composer) Status() JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.status
	if len(c.status.Warnings) > 0 {
		st.Warnings = make([]string, len(c.status.Warnings))
		copy(st.Warnings, c.status.Warnings)
	}
	return st
}

// Cancel aborts the active job, if any.
func (c *Composer) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels the active job and waits for it to finish.
func (c *Composer) Close() {
	c.Cancel()
	c.wg.Wait()
}

func (c *Composer) run(ctx context.Context, req *JobRequest) {
	defer c.wg.Done()

	workDir, err := c.makeWorkDir()
	if err != nil {
		c.fail(err)
		return
	}
	defer os.RemoveAll(workDir)

	backend := c.selector.Select(ctx)
	if backend == nil {
		c.fail(ErrBackendUnavailable)
		return
	}
	c.setBackend(backend.Name())

	if req.Type == JobScreenshot {
		c.runScreenshot(ctx, req, backend, workDir)
		return
	}

	entries := req.Entries
	if req.Type == JobExperience {
		entries = sortedForPlayback(entries)
	}

	c.setProgress(StateInitializing, 10, "Preparing segments")

	avatars := c.service.GetAvatars()
	total := len(entries)
	segments := make([]*Segment, 0, total)

	for i, entry := range entries {
		if ctx.Err() != nil {
			c.fail(ctx.Err())
			return
		}
		percent := 10 + (80*i)/total
		c.setProgress(StateRendering, percent, fmt.Sprintf("Rendering story %d of %d", i+1, total))

		seg, err := c.renderOne(ctx, entry, avatars, backend, workDir, i)
		if err != nil {
			if ctx.Err() != nil {
				c.fail(ctx.Err())
				return
			}
			c.logger.Warnf(providers.TypeExport, "segment %s failed: %s", entry.Filename, err.Error())
			c.addWarning(fmt.Sprintf("skipped %s: %s", entry.Filename, err.Error()))
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		c.fail(ErrNoRenderableContent)
		return
	}

	var artifact, name string
	switch req.Type {
	case JobCapture:
		artifact = segments[0].Path
		name = CaptureFilename(entries[0].Filename, backend.Extension())
	default:
		artifact = c.combine(ctx, backend, segments, workDir)
		if artifact == "" {
			c.fail(ctx.Err())
			return
		}
		name = experienceName(req, backend)
	}

	c.deliver(artifact, name)
}

func (c *Composer) runScreenshot(ctx context.Context, req *JobRequest, backend BackendInterface, workDir string) {
	entry := req.Entries[0]
	c.setProgress(StateRendering, 50, "Capturing frame")

	spec := BuildOverlaySpec(entry, c.service.GetAvatars())
	overlay, err := c.compositor.RenderOverlay(spec)
	if err != nil {
		c.fail(err)
		return
	}
	frame, err := backend.ExtractFrame(ctx, entry, overlay, workDir)
	if err != nil {
		if ctx.Err() != nil {
			c.fail(ctx.Err())
			return
		}
		c.fail(err)
		return
	}
	encoded, err := c.compositor.EncodePNG(frame)
	if err != nil {
		c.fail(err)
		return
	}

	stillPath := filepath.Join(workDir, "screenshot.png")
	if err := os.WriteFile(stillPath, encoded, 0644); err != nil {
		c.fail(err)
		return
	}
	c.deliver(stillPath, ScreenshotFilename(entry.Filename))
}

func (c *Composer) renderOne(ctx context.Context, entry *models.MediaEntry, avatars *models.AvatarSet, backend BackendInterface, workDir string, seq int) (*Segment, error) {
	spec := BuildOverlaySpec(entry, avatars)
	if spec.Avatar == nil {
		c.logger.Debugf(providers.TypeExport, "no avatar for %s, using placeholder", entry.Username)
	}
	overlay, err := c.compositor.RenderOverlay(spec)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	seg, err := backend.RenderSegment(ctx, entry, overlay, workDir, seq)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveSegmentDuration(time.Since(started))
	return seg, nil
}

// combine merges segments when the backend can, and degrades to the
// first segment with a warning when it cannot. Returns "" only on
// cancellation.
func (c *Composer) combine(ctx context.Context, backend BackendInterface, segments []*Segment, workDir string) string {
	if len(segments) == 1 {
		return segments[0].Path
	}
	c.setProgress(StateCombining, 90, fmt.Sprintf("Combining %d segments", len(segments)))

	concat, ok := backend.(ConcatenatorInterface)
	if !ok {
		c.addWarning(fmt.Sprintf("the %s backend cannot combine segments; delivering the first story only", backend.Name()))
		return segments[0].Path
	}

	paths := make([]string, len(segments))
	for i, seg := range segments {
		paths[i] = seg.Path
	}
	outPath := filepath.Join(workDir, "combined."+backend.Extension())
	if err := concat.Concatenate(ctx, paths, outPath); err != nil {
		if ctx.Err() != nil {
			return ""
		}
		c.logger.Warnf(providers.TypeExport, "concatenation failed: %s", err.Error())
		c.addWarning("combining segments failed; delivering the first story only")
		return segments[0].Path
	}
	return outPath
}

func (c *Composer) deliver(artifact, name string) {
	c.setProgress(StateDownloading, 95, "Delivering artifact")

	finalPath, err := c.sink.Deliver(artifact, name)
	if err != nil {
		c.fail(fmt.Errorf("delivery failed: %w", err))
		return
	}
	c.logger.Infof(providers.TypeExport, "export complete: %s", finalPath)
	c.metrics.IncExportJobs("success")

	c.mu.Lock()
	c.status.State = StateDone
	c.status.Percent = 100
	c.status.Stage = "Export complete"
	c.status.Artifact = name
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
}

func (c *Composer) fail(err error) {
	if err == nil {
		err = errors.New("export aborted")
	}
	result := "failed"
	if errors.Is(err, context.Canceled) {
		result = "canceled"
	}
	c.logger.Errorf(providers.TypeExport, "export failed: %s", err.Error())
	c.metrics.IncExportJobs(result)

	c.mu.Lock()
	c.status.State = StateFailed
	c.status.Stage = "Export failed"
	c.status.Error = err.Error()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
}

func (c *Composer) setProgress(state JobState, percent int, stage string) {
	c.mu.Lock()
	c.status.State = state
	c.status.Percent = percent
	c.status.Stage = stage
	c.mu.Unlock()
}

func (c *Composer) setBackend(name string) {
	c.mu.Lock()
	c.status.Backend = name
	c.mu.Unlock()
}

func (c *Composer) addWarning(msg string) {
	c.mu.Lock()
	c.status.Warnings = append(c.status.Warnings, msg)
	c.mu.Unlock()
}

func (c *Composer) makeWorkDir() (string, error) {
	base := c.config.Export.WorkDir
	if base != "" {
		if err := os.MkdirAll(base, 0755); err != nil {
			return "", fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "sae-export-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

// sortedForPlayback orders a selection chronologically by date, then by
// filename within a date.
func sortedForPlayback(entries []*models.MediaEntry) []*models.MediaEntry {
	sorted := make([]*models.MediaEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Filename < sorted[j].Filename
	})
	return sorted
}

// experienceName resolves the artifact filename, swapping the default
// container extension when the backend produces a different one.
func experienceName(req *JobRequest, backend BackendInterface) string {
	name := ExperienceFilename(req.Grouping, req.Username, req.Date, len(req.Entries))
	if ext := backend.Extension(); ext != "mp4" {
		name = strings.TrimSuffix(name, ".mp4") + "." + ext
	}
	return name
}

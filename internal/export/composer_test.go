package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sae/internal/models"
	"sae/internal/structures"
	"sae/internal/testutil"
)

// --- fakes (scoped to composer tests) ---

type fakeBackend struct {
	mu        sync.Mutex
	ext       string
	failFiles map[string]bool
	rendered  []string
	blockCh   chan struct{}
}

func (f *fakeBackend) Name() string                        { return "fake" }
func (f *fakeBackend) Extension() string                   { return f.ext }
func (f *fakeBackend) Initialize(_ context.Context) error { return nil }

func (f *fakeBackend) RenderSegment(ctx context.Context, entry *models.MediaEntry, _ image.Image, workDir string, seq int) (*Segment, error) {
	if f.blockCh != nil {
		select {
		case <-f.blockCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failFiles[entry.Filename] {
		return nil, fmt.Errorf("cannot render %s", entry.Filename)
	}

	path := filepath.Join(workDir, fmt.Sprintf("segment_%03d.%s", seq, f.ext))
	if err := os.WriteFile(path, []byte(entry.Filename), 0644); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.rendered = append(f.rendered, entry.Filename)
	f.mu.Unlock()
	return &Segment{Path: path, Type: entry.Type}, nil
}

func (f *fakeBackend) ExtractFrame(_ context.Context, _ *models.MediaEntry, _ image.Image, _ string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight)), nil
}

type fakeConcatBackend struct {
	fakeBackend
	concatErr   error
	concatCalls [][]string
}

func (f *fakeConcatBackend) Concatenate(_ context.Context, segments []string, outPath string) error {
	f.mu.Lock()
	f.concatCalls = append(f.concatCalls, segments)
	f.mu.Unlock()
	if f.concatErr != nil {
		return f.concatErr
	}
	return os.WriteFile(outPath, []byte("combined"), 0644)
}

type fakeSelector struct {
	backend BackendInterface
}

func (f *fakeSelector) Select(_ context.Context) BackendInterface { return f.backend }

type fakeSink struct {
	mu        sync.Mutex
	delivered []string
	err       error
}

func (f *fakeSink) Deliver(_ string, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	f.delivered = append(f.delivered, filename)
	f.mu.Unlock()
	return filepath.Join("/exports", filename), nil
}

func (f *fakeSink) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

func composerFixture(backend BackendInterface, sink DeliverySinkInterface) (ComposerInterface, *testutil.MockMetrics) {
	conf := &structures.Config{}
	metrics := &testutil.MockMetrics{}
	service := &testutil.MockArchiveService{Primary: "medicalmedium"}
	return NewComposer(conf, &testutil.MockLogger{}, metrics, service, NewCompositor(conf), &fakeSelector{backend: backend}, sink), metrics
}

func storyEntry(user, date, filename string, seq int) *models.MediaEntry {
	return &models.MediaEntry{
		Username:       user,
		Filename:       filename,
		Date:           date,
		Type:           models.MediaImage,
		SequenceNumber: seq,
		Path:           "archive/" + date + "/" + user + "/" + filename,
	}
}

func waitForTerminal(t *testing.T, c ComposerInterface) JobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := c.Status()
		if st.State == StateDone || st.State == StateFailed {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return JobStatus{}
}

func TestComposer_CaptureJob(t *testing.T) {
	backend := &fakeBackend{ext: "mp4"}
	sink := &fakeSink{}
	composer, metrics := composerFixture(backend, sink)

	id, err := composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("janedoe", "20250808", "janedoe_story_20250808_01.jpg", 1)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	assert.Equal(t, 100, st.Percent)
	assert.Equal(t, "fake", st.Backend)
	assert.Equal(t, "janedoe_story_20250808_01_screencapture.mp4", st.Artifact)
	assert.Equal(t, []string{"janedoe_story_20250808_01_screencapture.mp4"}, sink.names())
	assert.Equal(t, 1, metrics.ExportJobs["success"])
}

func TestComposer_ExperienceCombines(t *testing.T) {
	backend := &fakeConcatBackend{fakeBackend: fakeBackend{ext: "mp4"}}
	sink := &fakeSink{}
	composer, _ := composerFixture(backend, sink)

	_, err := composer.Start(&JobRequest{
		Type:     JobExperience,
		Grouping: GroupUserDate,
		Username: "janedoe",
		Date:     "20250808",
		Entries: []*models.MediaEntry{
			storyEntry("janedoe", "20250808", "a_02.jpg", 2),
			storyEntry("janedoe", "20250808", "a_01.jpg", 1),
			storyEntry("janedoe", "20250808", "a_03.jpg", 3),
		},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	assert.Empty(t, st.Warnings)
	assert.Equal(t, "visual_experience_janedoe_20250808_3stories.mp4", st.Artifact)

	require.Len(t, backend.concatCalls, 1)
	assert.Len(t, backend.concatCalls[0], 3)
	// Segments render in sequence order.
	assert.Equal(t, []string{"a_01.jpg", "a_02.jpg", "a_03.jpg"}, backend.rendered)
}

func TestComposer_ExperienceWithoutConcatenatorDegrades(t *testing.T) {
	backend := &fakeBackend{ext: "avi"}
	sink := &fakeSink{}
	composer, _ := composerFixture(backend, sink)

	_, err := composer.Start(&JobRequest{
		Type:     JobExperience,
		Grouping: GroupDate,
		Date:     "20250808",
		Entries: []*models.MediaEntry{
			storyEntry("alice", "20250808", "a_01.jpg", 1),
			storyEntry("bob", "20250808", "b_01.jpg", 1),
		},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	require.Len(t, st.Warnings, 1)
	assert.Contains(t, st.Warnings[0], "first story only")
	// Fallback container extension carries through to the artifact name.
	assert.Equal(t, "visual_experience_20250808_2stories.avi", st.Artifact)
}

func TestComposer_ConcatFailureDegrades(t *testing.T) {
	backend := &fakeConcatBackend{
		fakeBackend: fakeBackend{ext: "mp4"},
		concatErr:   assert.AnError,
	}
	sink := &fakeSink{}
	composer, _ := composerFixture(backend, sink)

	_, err := composer.Start(&JobRequest{
		Type:     JobExperience,
		Grouping: GroupUser,
		Username: "janedoe",
		Entries: []*models.MediaEntry{
			storyEntry("janedoe", "20250807", "a_01.jpg", 1),
			storyEntry("janedoe", "20250808", "b_01.jpg", 1),
		},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	require.Len(t, st.Warnings, 1)
	assert.Contains(t, st.Warnings[0], "first story only")
	assert.Equal(t, []string{"visual_experience_janedoe_2stories.mp4"}, sink.names())
}

func TestComposer_SkipsFailedSegments(t *testing.T) {
	backend := &fakeConcatBackend{fakeBackend: fakeBackend{
		ext:       "mp4",
		failFiles: map[string]bool{"broken.jpg": true},
	}}
	composer, _ := composerFixture(backend, &fakeSink{})

	_, err := composer.Start(&JobRequest{
		Type:     JobExperience,
		Grouping: GroupDate,
		Date:     "20250808",
		Entries: []*models.MediaEntry{
			storyEntry("alice", "20250808", "good.jpg", 1),
			storyEntry("alice", "20250808", "broken.jpg", 2),
		},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	require.Len(t, st.Warnings, 1)
	assert.Contains(t, st.Warnings[0], "broken.jpg")
}

func TestComposer_AllSegmentsFail(t *testing.T) {
	backend := &fakeBackend{ext: "mp4", failFiles: map[string]bool{"a.jpg": true, "b.jpg": true}}
	composer, metrics := composerFixture(backend, &fakeSink{})

	_, err := composer.Start(&JobRequest{
		Type:     JobExperience,
		Grouping: GroupDate,
		Date:     "20250808",
		Entries: []*models.MediaEntry{
			storyEntry("alice", "20250808", "a.jpg", 1),
			storyEntry("alice", "20250808", "b.jpg", 2),
		},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateFailed, st.State)
	assert.Contains(t, st.Error, "no renderable content")
	assert.Equal(t, 1, metrics.ExportJobs["failed"])
}

func TestComposer_EmptySelection(t *testing.T) {
	composer, _ := composerFixture(&fakeBackend{ext: "mp4"}, &fakeSink{})

	_, err := composer.Start(&JobRequest{Type: JobExperience, Grouping: GroupDate, Date: "20250808"})
	assert.ErrorIs(t, err, ErrNoRenderableContent)
}

func TestComposer_RejectsConcurrentJobs(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{ext: "mp4", blockCh: release}
	composer, _ := composerFixture(backend, &fakeSink{})

	_, err := composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("a", "20250808", "a.jpg", 1)},
	})
	require.NoError(t, err)

	_, err = composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("b", "20250808", "b.jpg", 1)},
	})
	assert.ErrorIs(t, err, ErrJobActive)

	close(release)
	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)

	// A finished job frees the slot.
	_, err = composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("c", "20250808", "c.jpg", 1)},
	})
	require.NoError(t, err)
	waitForTerminal(t, composer)
}

func TestComposer_CancelActiveJob(t *testing.T) {
	backend := &fakeBackend{ext: "mp4", blockCh: make(chan struct{})}
	composer, metrics := composerFixture(backend, &fakeSink{})

	_, err := composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("a", "20250808", "a.jpg", 1)},
	})
	require.NoError(t, err)

	composer.Cancel()
	st := waitForTerminal(t, composer)
	assert.Equal(t, StateFailed, st.State)
	assert.Equal(t, 1, metrics.ExportJobs["canceled"])
}

func TestComposer_ScreenshotJob(t *testing.T) {
	sink := &fakeSink{}
	composer, _ := composerFixture(&fakeBackend{ext: "mp4"}, sink)

	_, err := composer.Start(&JobRequest{
		Type:    JobScreenshot,
		Entries: []*models.MediaEntry{storyEntry("janedoe", "20250808", "janedoe_story_20250808_01.mp4", 1)},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateDone, st.State)
	assert.Equal(t, "janedoe_story_20250808_01_screenshot.png", st.Artifact)
	assert.Equal(t, []string{"janedoe_story_20250808_01_screenshot.png"}, sink.names())
}

func TestComposer_DeliveryFailure(t *testing.T) {
	sink := &fakeSink{err: assert.AnError}
	composer, metrics := composerFixture(&fakeBackend{ext: "mp4"}, sink)

	_, err := composer.Start(&JobRequest{
		Type:    JobCapture,
		Entries: []*models.MediaEntry{storyEntry("a", "20250808", "a.jpg", 1)},
	})
	require.NoError(t, err)

	st := waitForTerminal(t, composer)
	assert.Equal(t, StateFailed, st.State)
	assert.Contains(t, st.Error, "delivery failed")
	assert.Equal(t, 1, metrics.ExportJobs["failed"])
}

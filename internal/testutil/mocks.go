package testutil

import (
	"bytes"
	"io"
	"sync"
	"time"

	"sae/internal/models"
	"sae/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasLevel reports whether any recorded entry matches the level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level {
			return true
		}
	}
	return false
}

// MockArchiveService implements services.ArchiveServiceInterface over
// fixed data.
type MockArchiveService struct {
	mu          sync.Mutex
	Index       *models.ArchiveIndex
	Avatars     *models.AvatarSet
	Snapshots   *models.SnapshotSet
	Files       []models.FileRecord
	Primary     string
	ReloadCalls int
}

func (m *MockArchiveService) Reload(index *models.ArchiveIndex, avatars *models.AvatarSet, snapshots *models.SnapshotSet, files []models.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Index = index
	m.Avatars = avatars
	m.Snapshots = snapshots
	m.Files = files
	m.ReloadCalls++
}

func (m *MockArchiveService) GetIndex() *models.ArchiveIndex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Index == nil {
		return models.EmptyArchiveIndex()
	}
	return m.Index
}

func (m *MockArchiveService) GetAvatars() *models.AvatarSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Avatars == nil {
		return models.NewAvatarSet()
	}
	return m.Avatars
}

func (m *MockArchiveService) GetSnapshots() *models.SnapshotSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshots == nil {
		return models.NewSnapshotSet()
	}
	return m.Snapshots
}

func (m *MockArchiveService) GetFiles() []models.FileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Files
}

func (m *MockArchiveService) GetDates() []string { return m.GetIndex().Dates() }
func (m *MockArchiveService) GetUsers() []string { return m.GetIndex().Users() }
func (m *MockArchiveService) EntryCount() int    { return m.GetIndex().EntryCount() }
func (m *MockArchiveService) ReloadCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(m.ReloadCalls)
}
func (m *MockArchiveService) PrimaryAccount() string { return m.Primary }

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls.
type MockMetrics struct {
	mu         sync.Mutex
	Requests   int
	CacheHits  int
	CacheMiss  int
	Scans      int
	ExportJobs map[string]int
	Segments   int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMiss++
}
func (m *MockMetrics) ObserveScanDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scans++
}
func (m *MockMetrics) IncExportJobs(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExportJobs == nil {
		m.ExportJobs = make(map[string]int)
	}
	m.ExportJobs[result]++
}
func (m *MockMetrics) ObserveSegmentDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Segments++
}

// MockCache implements providers.CacheProviderInterface in a map.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Data == nil {
		m.Data = make(map[string][]byte)
	}
	m.Data[key] = value
}

// MemRef is an in-memory models.ContentRef.
type MemRef struct {
	Path    string
	Content []byte
}

func (r *MemRef) RelPath() string { return r.Path }
func (r *MemRef) Size() int64     { return int64(len(r.Content)) }
func (r *MemRef) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.Content)), nil
}

func NewMemRef(path string, content []byte) *MemRef {
	return &MemRef{Path: path, Content: content}
}

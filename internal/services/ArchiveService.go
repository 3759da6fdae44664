package services

import (
	"sync"

	"go.uber.org/atomic"

	"sae/internal/models"
	"sae/internal/structures"
)

type ArchiveServiceInterface interface {
	Reload(index *models.ArchiveIndex, avatars *models.AvatarSet, snapshots *models.SnapshotSet, files []models.FileRecord)
	GetIndex() *models.ArchiveIndex
	GetAvatars() *models.AvatarSet
	GetSnapshots() *models.SnapshotSet
	GetFiles() []models.FileRecord
	GetDates() []string
	GetUsers() []string
	EntryCount() int
	ReloadCount() int64
	PrimaryAccount() string
}

// ArchiveService owns the current load of the archive. Every reload
// swaps the whole derived state at once; readers always see one
// consistent generation, never a partially built one.
type ArchiveService struct {
	mu        sync.RWMutex
	index     *models.ArchiveIndex
	avatars   *models.AvatarSet
	snapshots *models.SnapshotSet
	files     []models.FileRecord
	primary   string
	reloads   atomic.Int64
}

func NewArchiveService(conf *structures.Config) ArchiveServiceInterface {
	return &ArchiveService{
		index:     models.EmptyArchiveIndex(),
		avatars:   models.NewAvatarSet(),
		snapshots: models.NewSnapshotSet(),
		primary:   conf.Archive.PrimaryAccount,
	}
}

func (as *ArchiveService) Reload(index *models.ArchiveIndex, avatars *models.AvatarSet, snapshots *models.SnapshotSet, files []models.FileRecord) {
	as.mu.Lock()
	as.index = index
	as.avatars = avatars
	as.snapshots = snapshots
	as.files = files
	as.mu.Unlock()
	as.reloads.Inc()
}

func (as *ArchiveService) GetIndex() *models.ArchiveIndex {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.index
}

func (as *ArchiveService) GetAvatars() *models.AvatarSet {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.avatars
}

func (as *ArchiveService) GetSnapshots() *models.SnapshotSet {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.snapshots
}

func (as *ArchiveService) GetFiles() []models.FileRecord {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]models.FileRecord, len(as.files))
	copy(out, as.files)
	return out
}

func (as *ArchiveService) GetDates() []string {
	return as.GetIndex().Dates()
}

func (as *ArchiveService) GetUsers() []string {
	return as.GetIndex().Users()
}

func (as *ArchiveService) EntryCount() int {
	return as.GetIndex().EntryCount()
}

func (as *ArchiveService) ReloadCount() int64 {
	return as.reloads.Load()
}

func (as *ArchiveService) PrimaryAccount() string {
	return as.primary
}

package archive

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"sae/internal/archive/interfaces"
	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/services"
	"sae/internal/structures"
)

// Scheduler drives the periodic full rescan of the archive and the
// snapshot persistence. Every rescan replaces the whole derived state;
// there is no incremental merge.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.ArchiveServiceInterface
	scanner     *Scanner
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	rescanInterval := s.config.Archive.RescanInterval
	saveInterval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(rescanInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.logger.Infof(providers.TypeScan, "Rescanning archive...")
		s.rescan()
	})

	s.cron.AddFunc(gron.Every(saveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath, s.service.GetFiles())
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted scan snapshot to %s", s.config.Persistence.FilePath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) rescan() {
	start := time.Now()
	result, err := s.scanner.Scan()
	if err != nil {
		s.logger.Errorf(providers.TypeScan, "Scan failed, keeping previous index: %s", err)
		return
	}
	s.service.Reload(result.Index, result.Avatars, result.Snapshots, result.Files)
	s.metrics.ObserveScanDuration(time.Since(start))
	s.logger.Infof(providers.TypeScan, "Rescan complete in %s", time.Since(start).Round(time.Millisecond))
}

// Restore rebuilds the index from the persisted snapshot when one
// exists, so the daemon serves instantly; otherwise it blocks on the
// first full scan.
func (s *Scheduler) Restore() error {
	snapshot, err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}

	if snapshot == nil {
		s.logger.Infof(providers.TypeScan, "No snapshot found, running initial scan")
		s.opsMu.Lock()
		defer s.opsMu.Unlock()
		s.rescan()
		return nil
	}

	refs := make([]models.ContentRef, 0, len(snapshot.Files))
	for _, rec := range snapshot.Files {
		refs = append(refs, NewDiskRef(s.config.Archive.Root, rec.Path, rec.Size))
	}
	result := s.scanner.BuildFromRefs(refs)
	s.service.Reload(result.Index, result.Avatars, result.Snapshots, result.Files)
	s.logger.Infof(providers.TypeScan, "Restored %d entries from snapshot taken %s",
		result.Index.EntryCount(), snapshot.ScannedAt.Format(time.RFC3339))
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting scan snapshot to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath, s.service.GetFiles())
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.ArchiveServiceInterface, scanner *Scanner, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		scanner:     scanner,
		fileManager: fileManager,
		metrics:     metrics,
	}
}

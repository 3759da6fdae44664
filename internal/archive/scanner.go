package archive

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/structures"
)

// diskRef is the content handle for a file under the archive root. The
// relative path keeps the root folder name as its first segment, the
// same shape a browser folder selection produces.
type diskRef struct {
	root    string
	relPath string
	size    int64
}

func (d *diskRef) RelPath() string { return d.relPath }
func (d *diskRef) Size() int64     { return d.size }

func (d *diskRef) Open() (io.ReadCloser, error) {
	return os.Open(d.AbsPath())
}

func (d *diskRef) AbsPath() string {
	// First segment is the root folder name itself.
	parts := strings.SplitN(d.relPath, "/", 2)
	if len(parts) < 2 {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(parts[1]))
}

// NewDiskRef re-acquires a content handle from a persisted file record.
func NewDiskRef(root, relPath string, size int64) models.ContentRef {
	return &diskRef{root: root, relPath: relPath, size: size}
}

// FileSupplierInterface is the file-supply collaborator: one call, one
// snapshot of the archive. No live updates.
type FileSupplierInterface interface {
	List() ([]models.ContentRef, error)
	Resolve(relPath string) (models.ContentRef, bool)
}

type DiskSupplier struct {
	root   string
	logger providers.Logger
}

func NewDiskSupplier(conf *structures.Config, logger providers.Logger) FileSupplierInterface {
	return &DiskSupplier{root: conf.Archive.Root, logger: logger}
}

func (d *DiskSupplier) List() ([]models.ContentRef, error) {
	base := filepath.Base(d.root)
	var refs []models.ContentRef

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// A vanished or unreadable subtree should not kill the scan.
			d.logger.Warnf(providers.TypeScan, "Skipping %s: %s", path, err)
			return fs.SkipDir
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		refs = append(refs, &diskRef{
			root:    d.root,
			relPath: base + "/" + filepath.ToSlash(rel),
			size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// Resolve maps a relative path back to a handle, refusing anything that
// escapes the root.
func (d *DiskSupplier) Resolve(relPath string) (models.ContentRef, bool) {
	if strings.Contains(relPath, "..") || strings.HasPrefix(relPath, "/") {
		return nil, false
	}
	ref := &diskRef{root: d.root, relPath: relPath}
	info, err := os.Stat(ref.AbsPath())
	if err != nil || info.IsDir() {
		return nil, false
	}
	ref.size = info.Size()
	return ref, true
}

// ScanResult is everything one load of the archive produces. All parts
// are replaced wholesale on the next scan.
type ScanResult struct {
	Index     *models.ArchiveIndex
	Avatars   *models.AvatarSet
	Snapshots *models.SnapshotSet
	Files     []models.FileRecord
}

type Scanner struct {
	parser   *Parser
	supplier FileSupplierInterface
	logger   providers.Logger
}

func NewScanner(parser *Parser, supplier FileSupplierInterface, logger providers.Logger) *Scanner {
	return &Scanner{
		parser:   parser,
		supplier: supplier,
		logger:   logger,
	}
}

// Scan asks the supplier for a fresh snapshot and builds all derived
// structures from it.
func (s *Scanner) Scan() (*ScanResult, error) {
	refs, err := s.supplier.List()
	if err != nil {
		return nil, err
	}
	return s.BuildFromRefs(refs), nil
}

// BuildFromRefs runs the three parse passes over a file snapshot. Paths
// that match no pattern are skipped silently — malformed names must not
// abort a load.
func (s *Scanner) BuildFromRefs(refs []models.ContentRef) *ScanResult {
	s.logger.Infof(providers.TypeScan, "Processing %d files", len(refs))

	avatars := models.NewAvatarSet()
	for _, ref := range refs {
		if username, ok := s.parser.ParseAvatarPath(ref.RelPath()); ok {
			avatars.Put(username, ref)
		}
	}
	s.logger.Infof(providers.TypeScan, "Loaded %d avatars", avatars.Len())

	snapshots := models.NewSnapshotSet()
	for _, ref := range refs {
		if snap := s.parser.ParseSnapshotPath(ref.RelPath()); snap != nil {
			snap.Ref = ref
			snapshots.Add(snap)
		}
	}
	s.logger.Infof(providers.TypeScan, "Loaded %d profile snapshots for %d users",
		snapshots.Len(), len(snapshots.Users()))

	var entries []*models.MediaEntry
	for _, ref := range refs {
		if entry := s.parser.ParsePath(ref.RelPath()); entry != nil {
			entry.Ref = ref
			entries = append(entries, entry)
		}
	}

	index := BuildIndex(entries)
	s.logger.Infof(providers.TypeScan, "Indexed %d stories across %d dates and %d users",
		index.EntryCount(), len(index.Dates()), len(index.Users()))

	files := make([]models.FileRecord, 0, len(refs))
	for _, ref := range refs {
		files = append(files, models.FileRecord{Path: ref.RelPath(), Size: ref.Size()})
	}

	return &ScanResult{
		Index:     index,
		Avatars:   avatars,
		Snapshots: snapshots,
		Files:     files,
	}
}

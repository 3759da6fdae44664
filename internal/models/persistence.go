package models

import "time"

// FileRecord is the persisted form of one supplied file. Only the
// relative path and size survive a restart; content handles are
// re-acquired from the archive root on load.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ScanSnapshot is the on-disk format for the last completed scan. The
// index itself is not persisted — it is rebuilt from the file list
// through the same parse path, so both code paths stay identical.
type ScanSnapshot struct {
	Version   int          `json:"version"`
	ScannedAt time.Time    `json:"scanned_at"`
	Files     []FileRecord `json:"files"`
}

const SnapshotVersion = 1

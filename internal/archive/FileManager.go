package archive

import (
	"os"
	"time"

	json "github.com/goccy/go-json"

	"sae/internal/archive/interfaces"
	"sae/internal/models"
	"sae/internal/providers"
)

// FileManager persists the last completed scan so a restarted daemon
// can serve immediately and rebuild the index without waiting for the
// first walk of the archive.
type FileManager struct {
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string, files []models.FileRecord) error {
	snapshot := models.ScanSnapshot{
		Version:   models.SnapshotVersion,
		ScannedAt: time.Now(),
		Files:     files,
	}

	jsonData, err := json.Marshal(&snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile returns nil without error when no snapshot exists yet.
func (f *FileManager) LoadFromFile(fileName string) (*models.ScanSnapshot, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Corrupt snapshot found, ignoring: %s", err)
		return nil, nil
	}

	var snapshot models.ScanSnapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		f.logger.Warnf(providers.TypeApp, "Inconsistent snapshot found, ignoring: %s", err)
		return nil, nil
	}
	if snapshot.Version != models.SnapshotVersion {
		f.logger.Warnf(providers.TypeApp, "Snapshot version %d unsupported, ignoring", snapshot.Version)
		return nil, nil
	}

	return &snapshot, nil
}

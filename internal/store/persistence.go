package store

import (
	"os"

	json "github.com/goccy/go-json"

	"fmd/internal/providers"
	"fmd/internal/store/interfaces"
)

// SnapshotManager persists the realtime tree to a single compressed file.
// Saves go through a temp file and an atomic rename so a crash mid-write
// never corrupts the last good snapshot.
type SnapshotManager struct {
	store      RealtimeStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewSnapshotManager(compressor interfaces.CompressorInterface, store RealtimeStore, logger providers.Logger) *SnapshotManager {
	return &SnapshotManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (m *SnapshotManager) SaveToFile(fileName string) error {
	tree := m.store.Export()

	jsonData, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	data, err := m.compressor.Compress(jsonData)
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

// LoadFromFile restores the tree from disk. A missing file is a fresh
// install, not an error.
func (m *SnapshotManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := m.compressor.Decompress(data)
	if err != nil {
		// Early deployments wrote the snapshot uncompressed; fall back
		// before giving up.
		m.logger.Warnf(providers.TypeStore, "Snapshot not zstd-framed, trying plain JSON")
		decompressed = data
	}

	var tree map[string]any
	if err := json.Unmarshal(decompressed, &tree); err != nil {
		m.logger.Warnf(providers.TypeStore, "Snapshot unreadable: %s", err)
		return err
	}
	m.store.Restore(tree)
	return nil
}

func (m *SnapshotManager) Close() {
	m.compressor.Close()
}

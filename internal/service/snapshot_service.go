package service

import (
	"encoding/json"
	"io"
	"time"

	"commish/internal/domain"
	"commish/internal/models"
)

type snapshotStore interface {
	Export() (*models.Snapshot, error)
	Replace(snap *models.Snapshot) error
}

type snapshotSettingStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// ErrStaleSnapshot rejects an import older than the last one applied. The
// caller can retry with force once a human has confirmed the rollback.
var ErrStaleSnapshot = domain.Invalid("timestamp", "snapshot is older than the current data set")

// SnapshotService serializes the full data set to and from the portable JSON
// document. Imports follow last-writer-wins on the embedded timestamp.
type SnapshotService struct {
	store    snapshotStore
	settings snapshotSettingStore
}

func NewSnapshotService(store snapshotStore, settings snapshotSettingStore) *SnapshotService {
	return &SnapshotService{store: store, settings: settings}
}

// Export captures the data set with a fresh timestamp.
func (s *SnapshotService) Export() (*models.Snapshot, error) {
	snap, err := s.store.Export()
	if err != nil {
		return nil, err
	}
	snap.Timestamp = time.Now().UTC()
	return snap, nil
}

// WriteJSON streams the export as indented JSON, the shape the vault sink
// and the admin download share.
func (s *SnapshotService) WriteJSON(w io.Writer) error {
	snap, err := s.Export()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces the data set with the uploaded document. Unless force is
// set, a document older than the last applied import is refused.
func (s *SnapshotService) Import(r io.Reader, force bool) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, domain.Invalid("file", "not a valid snapshot document")
	}
	if snap.Timestamp.IsZero() {
		return nil, domain.Invalid("timestamp", "snapshot has no timestamp")
	}
	if !force {
		if last, err := s.settings.Get(domain.SettingSnapshotImportedAt); err == nil && last != "" {
			if lastAt, parseErr := time.Parse(time.RFC3339, last); parseErr == nil && snap.Timestamp.Before(lastAt) {
				return nil, ErrStaleSnapshot
			}
		}
	}
	if err := s.store.Replace(&snap); err != nil {
		return nil, err
	}
	// Replace wipes system_settings, so the marker must be written after.
	if err := s.settings.Set(domain.SettingSnapshotImportedAt, snap.Timestamp.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return &snap, nil
}

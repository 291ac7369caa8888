package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"commish/internal/domain"
	"commish/internal/models"

	"gorm.io/gorm"
)

type snapshotStoreStub struct {
	current  *models.Snapshot
	replaced *models.Snapshot
}

func (s *snapshotStoreStub) Export() (*models.Snapshot, error) {
	if s.current == nil {
		return &models.Snapshot{}, nil
	}
	return s.current, nil
}

func (s *snapshotStoreStub) Replace(snap *models.Snapshot) error {
	s.replaced = snap
	return nil
}

type settingKVStub struct {
	values map[string]string
}

func (s *settingKVStub) Get(key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (s *settingKVStub) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func newSnapshotFixture() (*SnapshotService, *snapshotStoreStub, *settingKVStub) {
	store := &snapshotStoreStub{current: &models.Snapshot{
		Users: []models.SnapshotUser{models.NewSnapshotUser(models.User{
			ID: "u1", Name: "Jasmine", PasswordHash: "$2a$10$jasmines-hash",
		})},
		Sales: []models.SaleRecord{{ID: "s1", Status: domain.SalePending}},
	}}
	settings := &settingKVStub{values: make(map[string]string)}
	return NewSnapshotService(store, settings), store, settings
}

func TestExportStampsTimestamp(t *testing.T) {
	svc, _, _ := newSnapshotFixture()
	before := time.Now().UTC()
	snap, err := svc.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if snap.Timestamp.Before(before) {
		t.Errorf("timestamp %v predates export", snap.Timestamp)
	}
	if len(snap.Users) != 1 || len(snap.Sales) != 1 {
		t.Errorf("snapshot contents dropped: %+v", snap)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	svc, _, _ := newSnapshotFixture()
	var buf bytes.Buffer
	if err := svc.WriteJSON(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snap.Users) != 1 || snap.Users[0].ID != "u1" {
		t.Errorf("round trip lost users: %+v", snap.Users)
	}
}

// A restored snapshot must leave every account able to log in: the password
// hash has to survive export, serialization and import even though API
// responses never carry it.
func TestSnapshotRoundTripKeepsPasswordHash(t *testing.T) {
	svc, store, _ := newSnapshotFixture()
	var buf bytes.Buffer
	if err := svc.WriteJSON(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "$2a$10$jasmines-hash") {
		t.Fatal("exported document dropped the password hash")
	}

	if _, err := svc.Import(bytes.NewReader(buf.Bytes()), true); err != nil {
		t.Fatalf("import: %v", err)
	}
	if store.replaced == nil || len(store.replaced.Users) != 1 {
		t.Fatalf("replace not applied: %+v", store.replaced)
	}
	restored := store.replaced.Users[0].Account()
	if restored.PasswordHash != "$2a$10$jasmines-hash" {
		t.Errorf("restored hash = %q, want the original", restored.PasswordHash)
	}
}

func snapshotDoc(t *testing.T, ts time.Time) string {
	t.Helper()
	data, err := json.Marshal(models.Snapshot{
		Timestamp: ts,
		Users:     []models.SnapshotUser{models.NewSnapshotUser(models.User{ID: "u2", Name: "Megan"})},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestImportAppliesAndRecordsMarker(t *testing.T) {
	svc, store, settings := newSnapshotFixture()
	ts := time.Now().UTC().Truncate(time.Second)

	snap, err := svc.Import(strings.NewReader(snapshotDoc(t, ts)), false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if store.replaced == nil || len(store.replaced.Users) != 1 || store.replaced.Users[0].ID != "u2" {
		t.Fatalf("replace not applied: %+v", store.replaced)
	}
	if snap.Timestamp.IsZero() {
		t.Error("returned snapshot lost its timestamp")
	}
	marker := settings.values[domain.SettingSnapshotImportedAt]
	if marker == "" {
		t.Fatal("import marker not written")
	}
	if parsed, err := time.Parse(time.RFC3339, marker); err != nil || !parsed.Equal(ts) {
		t.Errorf("marker = %q, want %v", marker, ts)
	}
}

func TestImportRejectsStaleUnlessForced(t *testing.T) {
	svc, store, settings := newSnapshotFixture()
	now := time.Now().UTC().Truncate(time.Second)
	settings.values[domain.SettingSnapshotImportedAt] = now.Format(time.RFC3339)

	stale := snapshotDoc(t, now.Add(-time.Hour))
	if _, err := svc.Import(strings.NewReader(stale), false); !errors.Is(err, ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
	if store.replaced != nil {
		t.Fatal("stale import still replaced the data set")
	}

	if _, err := svc.Import(strings.NewReader(stale), true); err != nil {
		t.Fatalf("forced import: %v", err)
	}
	if store.replaced == nil {
		t.Fatal("forced import did not apply")
	}
}

func TestImportRejectsBadDocuments(t *testing.T) {
	svc, store, _ := newSnapshotFixture()
	if _, err := svc.Import(strings.NewReader("{not json"), false); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bad JSON, got %v", err)
	}
	if _, err := svc.Import(strings.NewReader(`{"users":[]}`), false); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing timestamp, got %v", err)
	}
	if store.replaced != nil {
		t.Fatal("bad document replaced the data set")
	}
}

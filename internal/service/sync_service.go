package service

import (
	"log"
	"sync/atomic"
	"time"

	"commish/internal/ws"
	"commish/pkg/vault"
)

// SyncService ties store mutations to the things that care about them: open
// WebSocket sessions get a store_changed event, and the vault gets a
// debounced save request. Handlers call Changed after any write.
type SyncService struct {
	hub     *ws.Hub
	vault   *vault.Vault
	version atomic.Int64
}

func NewSyncService(hub *ws.Hub, v *vault.Vault) *SyncService {
	return &SyncService{hub: hub, vault: v}
}

// Changed bumps the data version, notifies connected sessions and schedules
// a vault save. Cheap enough to call on every mutation.
func (s *SyncService) Changed() {
	version := s.version.Add(1)
	if s.hub != nil {
		s.hub.BroadcastAll(map[string]interface{}{
			"type":    "store_changed",
			"version": version,
			"at":      time.Now().UTC().Format(time.RFC3339),
		})
	}
	if s.vault != nil {
		s.vault.RequestSave()
	}
}

// Version returns the current data version counter. Resets on restart; only
// ordering within a process lifetime matters.
func (s *SyncService) Version() int64 {
	return s.version.Load()
}

// WatchVault forwards external vault file edits to connected sessions so a
// stale tab knows to reload. Runs until the vault poller stops.
func (s *SyncService) WatchVault() {
	if s.vault == nil {
		return
	}
	changes := s.vault.Subscribe()
	go func() {
		for range changes {
			log.Printf("[sync] vault file changed externally")
			if s.hub != nil {
				s.hub.BroadcastAll(map[string]interface{}{
					"type": "vault_changed",
					"at":   time.Now().UTC().Format(time.RFC3339),
				})
			}
		}
	}()
}

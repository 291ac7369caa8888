package models

import "time"

// Snapshot is the portable export of the whole data set. The vault sink
// writes it to disk and the admin export/import endpoints move it between
// deployments. Timestamp drives the last-writer-wins staleness check.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Users     []SnapshotUser  `json:"users"`
	Campaigns []Campaign      `json:"campaigns"`
	Links     []AffiliateLink `json:"links"`
	Sales     []SaleRecord    `json:"sales"`
	ClickLogs []ClickLog      `json:"click_logs"`
	Settings  []SystemSetting `json:"settings"`
}

// SnapshotUser is the snapshot-side shape of a user row. The API model keeps
// the password hash out of JSON responses; a snapshot without it would lock
// every account out after a restore, so the hash travels explicitly here.
// The export/import surface is admin-only.
type SnapshotUser struct {
	User
	PasswordHash string `json:"password_hash,omitempty"`
}

func NewSnapshotUser(u User) SnapshotUser {
	return SnapshotUser{User: u, PasswordHash: u.PasswordHash}
}

// Account rebuilds the storable user row with the hash restored.
func (s SnapshotUser) Account() User {
	u := s.User
	u.PasswordHash = s.PasswordHash
	return u
}

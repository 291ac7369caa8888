package domain

const (
	RoleBusiness = "BUSINESS"
	RoleCreator  = "CREATOR"
	RoleAdmin    = "ADMIN"
)

const (
	CampaignActive = "ACTIVE"
	CampaignPaused = "PAUSED"
	CampaignEnded  = "ENDED"
)

const (
	LinkPendingAssignment = "PENDING_ASSIGNMENT"
	LinkActive            = "ACTIVE"
	LinkRevoked           = "REVOKED"
)

const (
	SalePending     = "PENDING"
	SaleDue         = "DUE"
	SalePaymentSent = "PAYMENT_SENT"
	SalePaid        = "PAID"
	SaleDisputed    = "DISPUTED"
)

const (
	FrequencyWeekly   = "WEEKLY"
	FrequencyBiweekly = "BIWEEKLY"
	FrequencyMonthly  = "MONTHLY"
)

const (
	VerifyManualEntry = "MANUAL_ENTRY"
	VerifyCSVImport   = "CSV_IMPORT"
	VerifyLedgerSync  = "LEDGER_SYNC"
)

// System setting keys
const (
	SettingAdminPayoutMethod     = "admin_payout_method"
	SettingAdminPayoutIdentifier = "admin_payout_identifier"
	SettingAdminPayoutNetwork    = "admin_payout_network"
	SettingPlatformSplitPercent  = "platform_split_percent"
	SettingSnapshotImportedAt    = "snapshot_imported_at"
)

// PayoutCycleDays maps a campaign payment frequency to its cycle length.
var PayoutCycleDays = map[string]int{
	FrequencyWeekly:   7,
	FrequencyBiweekly: 14,
	FrequencyMonthly:  30,
}

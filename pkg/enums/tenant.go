package enums

// SyncStatus tracks the state of the upstream Bsale inventory sync.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusActive  SyncStatus = "active"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusPaused  SyncStatus = "paused"
)

// IsValid checks whether the given status matches the canonical enum.
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusActive, SyncStatusFailed, SyncStatusPaused:
		return true
	}
	return false
}

// SubscriptionStatus maps to the subscription_status enum in Postgres.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// IsValid checks whether the given status matches the canonical enum.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusTrialing, SubscriptionStatusActive,
		SubscriptionStatusPastDue, SubscriptionStatusCanceled:
		return true
	}
	return false
}

// Billable reports whether the subscription should receive digests.
func (s SubscriptionStatus) Billable() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

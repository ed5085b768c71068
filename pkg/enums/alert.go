package enums

import "fmt"

// AlertType maps to the alert_type enum in Postgres.
type AlertType string

const (
	AlertTypeLowStock    AlertType = "low_stock"
	AlertTypeOutOfStock  AlertType = "out_of_stock"
	AlertTypeLowVelocity AlertType = "low_velocity"
)

var validAlertTypes = []AlertType{
	AlertTypeLowStock,
	AlertTypeOutOfStock,
	AlertTypeLowVelocity,
}

// IsValid checks whether the given type matches the canonical enum.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw strings into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}

// AlertStatus maps to the alert_status enum in Postgres.
type AlertStatus string

const (
	AlertStatusPending AlertStatus = "pending"
	AlertStatusSent    AlertStatus = "sent"
)

// IsValid checks whether the given status matches the canonical enum.
func (a AlertStatus) IsValid() bool {
	return a == AlertStatusPending || a == AlertStatusSent
}

package enums

import "fmt"

// Plan maps to the billing plan enum in Postgres.
type Plan string

const (
	PlanFree      Plan = "free"
	PlanStarter   Plan = "starter"
	PlanPro       Plan = "pro"
	PlanUnlimited Plan = "unlimited"
)

var validPlans = []Plan{PlanFree, PlanStarter, PlanPro, PlanUnlimited}

// UnlimitedThresholds marks plans without a threshold allowance cap.
const UnlimitedThresholds = -1

// AlertThresholdAllowance returns how many alert thresholds a plan may keep
// active. UnlimitedThresholds means no cap.
func (p Plan) AlertThresholdAllowance() int {
	switch p {
	case PlanStarter:
		return 25
	case PlanPro:
		return 100
	case PlanUnlimited:
		return UnlimitedThresholds
	default:
		return 5
	}
}

// IsValid checks whether the given plan matches the canonical enum.
func (p Plan) IsValid() bool {
	for _, candidate := range validPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlan converts raw strings into Plan.
func ParsePlan(value string) (Plan, error) {
	for _, candidate := range validPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan %q", value)
}

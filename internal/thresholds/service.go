package thresholds

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
)

// LimitInfo reports how a user's enabled thresholds compare with their
// plan's allowance. SkippedCount is the number of thresholds currently not
// generating alerts because the account is over its allowance.
type LimitInfo struct {
	Plan         enums.Plan `json:"plan"`
	CurrentCount int        `json:"currentCount"`
	MaxAllowed   int        `json:"maxAllowed"`
	Remaining    int        `json:"remaining"`
	IsOverLimit  bool       `json:"isOverLimit"`
	SkippedCount int        `json:"skippedCount"`
}

type repository interface {
	CountEnabledByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListEnabledByUser(ctx context.Context, userID uuid.UUID) ([]models.Threshold, error)
	GetUserPlan(ctx context.Context, userID uuid.UUID) (enums.Plan, error)
}

// Service answers plan-limit questions for a user's thresholds.
type Service struct {
	repo repository
}

// NewService wires the threshold limit gate.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "thresholds repository required")
	}
	return &Service{repo: repo}, nil
}

// GetUserLimitInfo computes the full plan-limit picture for a user.
func (s *Service) GetUserLimitInfo(ctx context.Context, userID uuid.UUID) (*LimitInfo, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	plan, err := s.repo.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user plan")
	}
	count, err := s.repo.CountEnabledByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count enabled thresholds")
	}

	info := &LimitInfo{
		Plan:         plan,
		CurrentCount: int(count),
		MaxAllowed:   plan.AlertThresholdAllowance(),
	}
	if info.MaxAllowed == enums.UnlimitedThresholds {
		info.Remaining = enums.UnlimitedThresholds
		return info, nil
	}

	info.Remaining = info.MaxAllowed - info.CurrentCount
	if info.Remaining < 0 {
		info.Remaining = 0
	}
	if info.CurrentCount > info.MaxAllowed {
		info.IsOverLimit = true
		info.SkippedCount = info.CurrentCount - info.MaxAllowed
	}
	return info, nil
}

// GetSkippedCount returns how many of the user's thresholds are suppressed
// by their plan. This is advisory for the digest body; it never gates alert
// delivery.
func (s *Service) GetSkippedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	info, err := s.GetUserLimitInfo(ctx, userID)
	if err != nil {
		return 0, err
	}
	return info.SkippedCount, nil
}

// GetActiveThresholdIDs returns the thresholds still generating alerts: the
// oldest MaxAllowed enabled ones, or all of them on an unlimited plan.
func (s *Service) GetActiveThresholdIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	info, err := s.GetUserLimitInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEnabledByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list enabled thresholds")
	}

	limit := len(rows)
	if info.MaxAllowed != enums.UnlimitedThresholds && info.MaxAllowed < limit {
		limit = info.MaxAllowed
	}
	ids := make([]uuid.UUID, 0, limit)
	for _, row := range rows[:limit] {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

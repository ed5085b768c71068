package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/email"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

type tenantRepo interface {
	GetActive(ctx context.Context) ([]models.Tenant, error)
}

type userRepo interface {
	GetWithDigestEnabled(ctx context.Context, tenantID uuid.UUID, frequency enums.DigestFrequency) ([]models.User, error)
}

type alertRepo interface {
	GetPendingByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error)
	MarkAsSent(ctx context.Context, ids []uuid.UUID) error
}

type limitGate interface {
	GetSkippedCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Result summarizes one digest run across all tenants.
type Result struct {
	Frequency        enums.DigestFrequency `json:"frequency"`
	TenantsProcessed int                   `json:"tenantsProcessed"`
	EmailsSent       int                   `json:"emailsSent"`
	EmailsFailed     int                   `json:"emailsFailed"`
	AlertsMarkedSent int                   `json:"alertsMarkedSent"`
	Errors           []string              `json:"errors"`
	StartedAt        time.Time             `json:"startedAt"`
	CompletedAt      time.Time             `json:"completedAt"`
}

// PipelineParams wires the digest pipeline's collaborators.
type PipelineParams struct {
	Logger  *logger.Logger
	Tenants tenantRepo
	Users   userRepo
	Alerts  alertRepo
	Gate    limitGate
	Email   email.Client
	AppURL  string

	now func() time.Time
}

// Pipeline aggregates pending alerts into per-user digest emails and marks
// them sent once the provider accepts delivery.
type Pipeline struct {
	logg    *logger.Logger
	tenants tenantRepo
	users   userRepo
	alerts  alertRepo
	gate    limitGate
	email   email.Client
	appURL  string
	now     func() time.Time
}

// NewPipeline validates collaborators and builds a Pipeline.
func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Tenants == nil || params.Users == nil || params.Alerts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tenant, user and alert repositories required")
	}
	if params.Gate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "threshold limit gate required")
	}
	if params.Email == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email client required")
	}
	if params.now == nil {
		params.now = time.Now
	}
	return &Pipeline{
		logg:    params.Logger,
		tenants: params.Tenants,
		users:   params.Users,
		alerts:  params.Alerts,
		gate:    params.Gate,
		email:   params.Email,
		appURL:  params.AppURL,
		now:     params.now,
	}, nil
}

// Run processes every active tenant sequentially for the given cadence. A
// failure inside one tenant is recorded on the result and never stops the
// remaining tenants; only a failure to list tenants aborts the run.
func (p *Pipeline) Run(ctx context.Context, frequency enums.DigestFrequency) (*Result, error) {
	if frequency == "" {
		frequency = enums.DigestFrequencyDaily
	}
	if !frequency.Schedulable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("frequency %q is not schedulable", frequency))
	}

	result := &Result{
		Frequency: frequency,
		Errors:    []string{},
		StartedAt: p.now().UTC(),
	}

	activeTenants, err := p.tenants.GetActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active tenants")
	}

	for _, tenant := range activeTenants {
		tenantCtx := p.logg.WithTenantID(ctx, tenant.ID.String())
		if err := p.processTenant(tenantCtx, tenant, frequency, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", tenant.ID, err.Error()))
			p.logg.Error(tenantCtx, "digest tenant failed", err)
		}
	}

	result.CompletedAt = p.now().UTC()
	return result, nil
}

// processTenant runs the whole per-tenant body under one recovery boundary.
// Whatever escapes, the caller records a single tenant-scoped error and moves
// on to the next tenant.
func (p *Pipeline) processTenant(ctx context.Context, tenant models.Tenant, frequency enums.DigestFrequency, result *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if recovered, ok := r.(error); ok {
				err = recovered
				return
			}
			err = pkgerrors.New(pkgerrors.CodeInternal, "Unknown error")
		}
	}()

	recipients, err := p.users.GetWithDigestEnabled(ctx, tenant.ID, frequency)
	if err != nil {
		return fmt.Errorf("list digest recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	pending, err := p.alerts.GetPendingByTenant(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("list pending alerts: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	byUser := make(map[uuid.UUID][]models.Alert, len(recipients))
	for _, alert := range pending {
		byUser[alert.UserID] = append(byUser[alert.UserID], alert)
	}

	matched := false
	for _, user := range recipients {
		userAlerts := byUser[user.ID]
		if len(userAlerts) == 0 {
			continue
		}
		if !matched {
			matched = true
			result.TenantsProcessed++
		}
		if err := p.deliverDigest(ctx, tenant, user, userAlerts, result); err != nil {
			return err
		}
	}
	return nil
}

// deliverDigest composes, sends, and marks sent one user's digest. A
// structured provider rejection is recorded and returns nil so the tenant's
// other recipients still get their digests; transport and persistence
// failures return an error and abandon the tenant.
func (p *Pipeline) deliverDigest(ctx context.Context, tenant models.Tenant, user models.User, userAlerts []models.Alert, result *Result) error {
	ctx = p.logg.WithUserID(ctx, user.ID.String())

	skipped, err := p.gate.GetSkippedCount(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("threshold limit for user %s: %w", user.ID, err)
	}

	message, err := ComposeDigest(ComposeParams{
		TenantName:   tenant.Name,
		User:         user,
		Alerts:       userAlerts,
		SkippedCount: skipped,
		AppURL:       p.appURL,
	})
	if err != nil {
		return fmt.Errorf("compose digest for user %s: %w", user.ID, err)
	}

	sendResult, err := p.email.Send(ctx, *message)
	if err != nil {
		return fmt.Errorf("send digest to %s: %w", message.To, err)
	}
	if !sendResult.Accepted {
		result.EmailsFailed++
		reason := sendResult.ErrorMessage
		if reason == "" {
			reason = "Unknown error"
		}
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to send to %s: %s", tenant.ID, message.To, reason))
		p.logg.Warn(ctx, "digest email rejected by provider")
		return nil
	}

	result.EmailsSent++

	ids := make([]uuid.UUID, 0, len(userAlerts))
	for _, alert := range userAlerts {
		ids = append(ids, alert.ID)
	}
	// Alerts flip to sent only after the provider accepted the message. If
	// this write fails they stay pending and the next run re-sends; we trade
	// a duplicate email over silently losing an alert.
	if err := p.alerts.MarkAsSent(ctx, ids); err != nil {
		return fmt.Errorf("mark %d alerts sent: %w", len(ids), err)
	}
	result.AlertsMarkedSent += len(ids)

	p.logg.Info(ctx, fmt.Sprintf("digest sent with %d alerts", len(ids)))
	return nil
}

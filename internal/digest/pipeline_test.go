package digest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/email"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

type fakeTenantRepo struct {
	tenants []models.Tenant
	err     error
}

func (f *fakeTenantRepo) GetActive(_ context.Context) ([]models.Tenant, error) {
	return f.tenants, f.err
}

type fakeUserRepo struct {
	byTenant map[uuid.UUID][]models.User
	errFor   map[uuid.UUID]error
}

func (f *fakeUserRepo) GetWithDigestEnabled(_ context.Context, tenantID uuid.UUID, _ enums.DigestFrequency) ([]models.User, error) {
	if err := f.errFor[tenantID]; err != nil {
		return nil, err
	}
	return f.byTenant[tenantID], nil
}

type fakeAlertRepo struct {
	byTenant  map[uuid.UUID][]models.Alert
	errFor    map[uuid.UUID]error
	markErr   error
	markedIDs [][]uuid.UUID
}

func (f *fakeAlertRepo) GetPendingByTenant(_ context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	if err := f.errFor[tenantID]; err != nil {
		return nil, err
	}
	return f.byTenant[tenantID], nil
}

func (f *fakeAlertRepo) MarkAsSent(_ context.Context, ids []uuid.UUID) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedIDs = append(f.markedIDs, ids)
	return nil
}

type fakeGate struct {
	skipped   int
	err       error
	panicWith any
}

func (f *fakeGate) GetSkippedCount(_ context.Context, _ uuid.UUID) (int, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.skipped, f.err
}

type sentMessage struct {
	message email.Message
	result  email.SendResult
}

type fakeEmailClient struct {
	sent []sentMessage

	// scripted outcomes keyed by recipient; unmatched recipients succeed
	rejections map[string]string
	transport  map[string]error
}

func (f *fakeEmailClient) Send(_ context.Context, message email.Message) (*email.SendResult, error) {
	if err, ok := f.transport[message.To]; ok {
		return nil, err
	}
	if reason, ok := f.rejections[message.To]; ok {
		result := email.SendResult{Accepted: false, ErrorMessage: reason}
		f.sent = append(f.sent, sentMessage{message: message, result: result})
		return &result, nil
	}
	result := email.SendResult{Accepted: true, MessageID: "msg-" + message.To}
	f.sent = append(f.sent, sentMessage{message: message, result: result})
	return &result, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "digest-test", Output: io.Discard})
}

type fixture struct {
	tenant  models.Tenant
	user    models.User
	alerts  []models.Alert
	tenants *fakeTenantRepo
	users   *fakeUserRepo
	alertsR *fakeAlertRepo
	gate    *fakeGate
	mail    *fakeEmailClient
}

func newFixture() *fixture {
	tenant := models.Tenant{ID: uuid.New(), Name: "Ferretería Sur"}
	user := models.User{ID: uuid.New(), TenantID: tenant.ID, Email: "dueno@ferreteria.cl", DigestFrequency: enums.DigestFrequencyDaily, NotificationEnabled: true}
	alerts := []models.Alert{
		{ID: uuid.New(), TenantID: tenant.ID, UserID: user.ID, BsaleVariantID: 101, AlertType: enums.AlertTypeLowStock, CurrentQuantity: 3},
		{ID: uuid.New(), TenantID: tenant.ID, UserID: user.ID, BsaleVariantID: 102, AlertType: enums.AlertTypeOutOfStock, CurrentQuantity: 0},
	}
	return &fixture{
		tenant:  tenant,
		user:    user,
		alerts:  alerts,
		tenants: &fakeTenantRepo{tenants: []models.Tenant{tenant}},
		users:   &fakeUserRepo{byTenant: map[uuid.UUID][]models.User{tenant.ID: {user}}},
		alertsR: &fakeAlertRepo{byTenant: map[uuid.UUID][]models.Alert{tenant.ID: alerts}},
		gate:    &fakeGate{},
		mail:    &fakeEmailClient{},
	}
}

func (f *fixture) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(PipelineParams{
		Logger:  testLogger(),
		Tenants: f.tenants,
		Users:   f.users,
		Alerts:  f.alertsR,
		Gate:    f.gate,
		Email:   f.mail,
		AppURL:  "https://app.stockping.app",
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestRunSendsOneDigestAndMarksAlertsSent(t *testing.T) {
	fx := newFixture()
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TenantsProcessed != 1 || result.EmailsSent != 1 || result.EmailsFailed != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if result.AlertsMarkedSent != 2 {
		t.Fatalf("expected 2 alerts marked sent, got %d", result.AlertsMarkedSent)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(fx.mail.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(fx.mail.sent))
	}
	if got := fx.mail.sent[0].message.To; got != "dueno@ferreteria.cl" {
		t.Fatalf("unexpected recipient %q", got)
	}
	if len(fx.alertsR.markedIDs) != 1 || len(fx.alertsR.markedIDs[0]) != 2 {
		t.Fatalf("expected one mark-as-sent batch of 2, got %v", fx.alertsR.markedIDs)
	}
}

func TestRunProviderRejectionRecordsFailureAndKeepsAlertsPending(t *testing.T) {
	fx := newFixture()
	fx.mail.rejections = map[string]string{"dueno@ferreteria.cl": "mailbox full"}
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EmailsFailed != 1 || result.EmailsSent != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if result.AlertsMarkedSent != 0 || len(fx.alertsR.markedIDs) != 0 {
		t.Fatal("rejected digest must not mark alerts sent")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "dueno@ferreteria.cl") || !strings.Contains(result.Errors[0], "mailbox full") {
		t.Fatalf("error must carry recipient and provider reason, got %q", result.Errors[0])
	}
}

func TestRunProviderRejectionWithoutReasonNormalizes(t *testing.T) {
	fx := newFixture()
	fx.mail.rejections = map[string]string{"dueno@ferreteria.cl": ""}
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Unknown error") {
		t.Fatalf("expected normalized reason, got %v", result.Errors)
	}
}

func TestRunTransportErrorAbandonsTenantButNotRun(t *testing.T) {
	fx := newFixture()

	otherTenant := models.Tenant{ID: uuid.New(), Name: "Botillería Norte"}
	otherUser := models.User{ID: uuid.New(), TenantID: otherTenant.ID, Email: "ventas@norte.cl", NotificationEnabled: true}
	fx.tenants.tenants = append(fx.tenants.tenants, otherTenant)
	fx.users.byTenant[otherTenant.ID] = []models.User{otherUser}
	fx.alertsR.byTenant[otherTenant.ID] = []models.Alert{
		{ID: uuid.New(), TenantID: otherTenant.ID, UserID: otherUser.ID, BsaleVariantID: 9, AlertType: enums.AlertTypeLowStock, CurrentQuantity: 1},
	}
	fx.mail.transport = map[string]error{"dueno@ferreteria.cl": errors.New("connection reset")}
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one tenant error, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], fx.tenant.ID.String()+": ") {
		t.Fatalf("tenant error must be prefixed with tenant id, got %q", result.Errors[0])
	}
	if result.EmailsSent != 1 {
		t.Fatalf("second tenant must still be processed, got %+v", result)
	}
	if result.TenantsProcessed != 2 {
		t.Fatalf("both tenants had matching alerts, got %d processed", result.TenantsProcessed)
	}
}

func TestRunMarkAsSentFailureIsTenantScoped(t *testing.T) {
	fx := newFixture()
	fx.alertsR.markErr = errors.New("deadlock detected")
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EmailsSent != 1 {
		t.Fatalf("email was accepted before the write failed, got %+v", result)
	}
	if result.AlertsMarkedSent != 0 {
		t.Fatal("failed write must not count marked alerts")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "deadlock detected") {
		t.Fatalf("expected the write error recorded, got %v", result.Errors)
	}
}

func TestRunSkipsTenantWithoutRecipientsOrAlerts(t *testing.T) {
	fx := newFixture()
	noUsers := models.Tenant{ID: uuid.New(), Name: "Sin Usuarios"}
	noAlerts := models.Tenant{ID: uuid.New(), Name: "Sin Alertas"}
	fx.tenants.tenants = append(fx.tenants.tenants, noUsers, noAlerts)
	fx.users.byTenant[noAlerts.ID] = []models.User{{ID: uuid.New(), Email: "x@y.cl"}}
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TenantsProcessed != 1 {
		t.Fatalf("only the seeded tenant has matching alerts, got %d", result.TenantsProcessed)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("skipped tenants are not errors, got %v", result.Errors)
	}
}

func TestRunIgnoresAlertsForNonSubscribedUsers(t *testing.T) {
	fx := newFixture()
	stranger := uuid.New()
	fx.alertsR.byTenant[fx.tenant.ID] = []models.Alert{
		{ID: uuid.New(), TenantID: fx.tenant.ID, UserID: stranger, BsaleVariantID: 7, AlertType: enums.AlertTypeLowStock, CurrentQuantity: 2},
	}
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TenantsProcessed != 0 || result.EmailsSent != 0 {
		t.Fatalf("alerts owned by non-recipients must not send, got %+v", result)
	}
}

func TestRunTenantListFailureAbortsRun(t *testing.T) {
	fx := newFixture()
	fx.tenants.err = errors.New("db down")
	p := fx.pipeline(t)

	if _, err := p.Run(context.Background(), enums.DigestFrequencyDaily); err == nil {
		t.Fatal("expected run-level error when tenants cannot be listed")
	}
}

func TestRunGateFailureIsTenantScoped(t *testing.T) {
	fx := newFixture()
	fx.gate.err = errors.New("plan lookup failed")
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EmailsSent != 0 {
		t.Fatal("gate failure must not send a partial digest")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "plan lookup failed") {
		t.Fatalf("expected gate error recorded under the tenant, got %v", result.Errors)
	}
}

func TestRunNormalizesNonErrorPanics(t *testing.T) {
	fx := newFixture()
	fx.gate.panicWith = "boom"
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), enums.DigestFrequencyDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Unknown error") {
		t.Fatalf("non-error panic must normalize to Unknown error, got %v", result.Errors)
	}
}

func TestRunDefaultsEmptyFrequencyToDaily(t *testing.T) {
	fx := newFixture()
	p := fx.pipeline(t)

	result, err := p.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Frequency != enums.DigestFrequencyDaily {
		t.Fatalf("expected daily default, got %q", result.Frequency)
	}
}

func TestRunRejectsUnschedulableFrequency(t *testing.T) {
	fx := newFixture()
	p := fx.pipeline(t)

	if _, err := p.Run(context.Background(), enums.DigestFrequencyNone); err == nil {
		t.Fatal("expected validation error for frequency none")
	}
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	fx := newFixture()
	if _, err := NewPipeline(PipelineParams{
		Logger:  testLogger(),
		Tenants: fx.tenants,
		Users:   fx.users,
		Alerts:  fx.alertsR,
		Gate:    fx.gate,
	}); err == nil {
		t.Fatal("expected error without email client")
	}
}

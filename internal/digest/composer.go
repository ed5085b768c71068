package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/stockpinghq/stockping-backend/pkg/db/models"
	"github.com/stockpinghq/stockping-backend/pkg/email"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
)

const (
	digestTitle    = "Resumen de Alertas"
	skuPlaceholder = "N/A"
	billingPath    = "/settings/billing"
)

// ComposeParams carries everything needed to render one user's digest.
type ComposeParams struct {
	TenantName   string
	User         models.User
	Alerts       []models.Alert
	SkippedCount int
	AppURL       string
}

type digestView struct {
	TenantName   string
	Title        string
	Alerts       []alertView
	SkippedCount int
	UpgradeURL   string
}

type alertView struct {
	ProductName    string
	SKU            string
	TypeLabel      string
	Quantity       int
	Threshold      string
	DaysToStockout string
}

// Template fields render through html/template, so every upstream value is
// escaped before it reaches the email body.
var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, Helvetica, sans-serif; color: #1f2933; margin: 0; padding: 24px;">
  <h2 style="margin-bottom: 4px;">{{.Title}}</h2>
  <p style="margin-top: 0; color: #52606d;">{{.TenantName}}</p>
  <p>Tienes {{len .Alerts}} alerta(s) de inventario pendiente(s):</p>
  <table style="border-collapse: collapse; width: 100%;" cellpadding="8">
    <tr style="background: #f5f7fa; text-align: left;">
      <th>Producto</th>
      <th>SKU</th>
      <th>Alerta</th>
      <th>Stock actual</th>
      <th>Umbral</th>
      <th>D&iacute;as de stock</th>
    </tr>
    {{range .Alerts}}
    <tr style="border-bottom: 1px solid #e4e7eb;">
      <td>{{.ProductName}}</td>
      <td>{{.SKU}}</td>
      <td>{{.TypeLabel}}</td>
      <td>{{.Quantity}}</td>
      <td>{{.Threshold}}</td>
      <td>{{.DaysToStockout}}</td>
    </tr>
    {{end}}
  </table>
  {{if gt .SkippedCount 0}}
  <div style="margin-top: 24px; padding: 16px; background: #fff3cd; border-radius: 4px;">
    <p style="margin: 0;">{{.SkippedCount}} de tus umbrales no est&aacute;n generando alertas porque superan el l&iacute;mite de tu plan.</p>
    {{if .UpgradeURL}}
    <p style="margin: 12px 0 0;"><a href="{{.UpgradeURL}}" style="color: #0b69a3;">Mejorar mi plan</a></p>
    {{end}}
  </div>
  {{end}}
</body>
</html>
`))

// ComposeDigest renders one digest email for a user's pending alerts.
func ComposeDigest(params ComposeParams) (*email.Message, error) {
	if len(params.Alerts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "digest requires at least one alert")
	}
	recipient := params.User.RecipientEmail()
	if recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user has no deliverable address")
	}

	view := digestView{
		TenantName:   params.TenantName,
		Title:        digestTitle,
		SkippedCount: params.SkippedCount,
	}
	if params.SkippedCount > 0 && params.AppURL != "" {
		view.UpgradeURL = strings.TrimRight(params.AppURL, "/") + billingPath
	}
	for _, alert := range params.Alerts {
		view.Alerts = append(view.Alerts, newAlertView(alert))
	}

	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, view); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render digest template")
	}

	return &email.Message{
		To:      recipient,
		Subject: fmt.Sprintf("%s: %s", params.TenantName, digestTitle),
		HTML:    body.String(),
	}, nil
}

func newAlertView(alert models.Alert) alertView {
	view := alertView{
		ProductName:    fmt.Sprintf("Producto %d", alert.BsaleVariantID),
		SKU:            skuPlaceholder,
		TypeLabel:      alertTypeLabel(alert.AlertType),
		Quantity:       alert.CurrentQuantity,
		Threshold:      "-",
		DaysToStockout: "-",
	}
	if alert.ProductName != nil && *alert.ProductName != "" {
		view.ProductName = *alert.ProductName
	}
	if alert.SKU != nil && *alert.SKU != "" {
		view.SKU = *alert.SKU
	}
	if alert.ThresholdQuantity != nil {
		view.Threshold = fmt.Sprintf("%d", *alert.ThresholdQuantity)
	}
	if alert.DaysToStockout != nil {
		view.DaysToStockout = alert.DaysToStockout.StringFixed(1)
	}
	return view
}

func alertTypeLabel(alertType enums.AlertType) string {
	switch alertType {
	case enums.AlertTypeOutOfStock:
		return "Sin stock"
	case enums.AlertTypeLowVelocity:
		return "Baja rotación"
	default:
		return "Stock bajo"
	}
}

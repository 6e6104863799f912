package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="es">
<head>
  <meta charset="utf-8" />
  <title>{{.Invoice.Type}} {{.Invoice.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice {
      max-width: 820px;
      margin: 0 auto;
    }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta {
      text-align: right;
      font-size: 14px;
    }
    .meta .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section {
      margin-bottom: 24px;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .totals {
      margin-top: 12px;
      text-align: right;
      font-size: 14px;
    }
    .totals .grand {
      font-size: 16px;
      font-weight: bold;
    }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div><strong>{{.Issuer.Name}}</strong></div>
        <div>CUIT: {{.Issuer.CUIT}}</div>
        <div>Punto de venta: {{printf "%04d" .Issuer.PointOfSale}}</div>
      </div>
      <div class="meta">
        <div class="label">{{.Invoice.Type}}</div>
        <div><strong>{{.Invoice.Number}}</strong></div>
        <div>Estado: {{.Invoice.Status}}</div>
        <div>Fecha: {{formatDate .Invoice.Date}}</div>
      </div>
    </div>

    <div class="section">
      <div class="label">Cliente</div>
      <div><strong>{{.Client.Name}}</strong></div>
      {{if .Client.CUIT}}<div>CUIT: {{.Client.CUIT}}</div>{{end}}
      {{if .Client.Address}}<div>{{.Client.Address}}</div>{{end}}
    </div>

    {{if .Invoice.ServiceFrom}}
    <div class="section">
      <div class="label">Período de servicio</div>
      <div>{{formatDatePtr .Invoice.ServiceFrom}} - {{formatDatePtr .Invoice.ServiceTo}}</div>
    </div>
    {{end}}

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Descripción</th>
            <th>Cantidad</th>
            <th>Precio unitario</th>
            <th>IVA</th>
            <th>Importe</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Description}}</td>
            <td>{{formatQuantity .Quantity}}</td>
            <td>{{formatMoney .UnitPrice}}</td>
            <td>{{formatRate .IVARate}}</td>
            <td>{{formatMoney (lineAmount .Quantity .UnitPrice)}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <div class="totals">
        <div>Neto: {{formatMoney .Invoice.NetAmount}}</div>
        <div>IVA: {{formatMoney .Invoice.IVAAmount}}</div>
        <div class="grand">Total: {{formatMoney .Invoice.TotalAmount}}</div>
      </div>
    </div>

    <div class="footer">
      {{if .Invoice.CAE}}
      <div>CAE: {{.Invoice.CAE}}{{if .Invoice.CAEExpiration}} &mdash; Vencimiento: {{formatDatePtr .Invoice.CAEExpiration}}{{end}}</div>
      {{end}}
      {{if .Invoice.QRCodeData}}<div>Verificación: {{.Invoice.QRCodeData}}</div>{{end}}
    </div>
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     formatDate,
		"formatDatePtr":  formatDatePtr,
		"formatQuantity": formatQuantity,
		"formatRate":     formatRate,
		"lineAmount":     lineAmount,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	if input.Invoice.Number == "" {
		input.Invoice.Number = "-"
	}
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal) string {
	return "$ " + amount.StringFixed(2)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("02/01/2006")
}

func formatDatePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatDate(*value)
}

func formatQuantity(value decimal.Decimal) string {
	return value.String()
}

func formatRate(value decimal.Decimal) string {
	return fmt.Sprintf("%s%%", value.String())
}

func lineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

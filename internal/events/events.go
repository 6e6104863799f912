package events

// Billing event types published through the outbox.
const (
	EventInvoiceApproved     = "invoice.approved"
	EventInvoiceRejected     = "invoice.rejected"
	EventCreditNoteCreated   = "invoice.credit_note.created"
	EventMassPriceUpdated    = "pricing.mass_update.completed"
	EventBillingRunCompleted = "billing.run.completed"
)

// InvoicePayload captures the minimal data downstream consumers (PDF render,
// email delivery) need to pick up an approved document.
type InvoicePayload struct {
	InvoiceID string `json:"invoice_id"`
	Type      string `json:"type"`
	Number    int64  `json:"number,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id": p.InvoiceID,
		"type":       p.Type,
	}
	if p.Number != 0 {
		payload["number"] = p.Number
	}
	return payload
}

// BillingRunPayload describes one completed recurring-billing run.
type BillingRunPayload struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p BillingRunPayload) ToMap() map[string]any {
	return map[string]any{
		"month": p.Month,
		"count": p.Count,
	}
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind discriminates the two numbered document types.
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindReceipt DocumentKind = "receipt"
)

// Document statuses. Only pending invoices participate in deadline scans.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	ReceiptStatusIssued    = "issued"
)

// Document represents a numbered billing document (invoice or receipt).
// Number is derived from (Kind, Period, Sequence) at creation time and is
// never recomputed afterwards. (OwnerID, Kind, Period, Sequence) is unique.
type Document struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Kind      DocumentKind    `json:"kind"`
	Number    string          `json:"number"`
	Period    int             `json:"period"` // year*100 + month
	Sequence  int             `json:"sequence"`
	RoomName  string          `json:"room_name"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

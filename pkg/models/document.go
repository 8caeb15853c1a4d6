package models

import "time"

// DocumentType selects the vocabulary of a billing document.
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeQuotation DocumentType = "quotation"
	DocumentTypeReceipt   DocumentType = "receipt"
)

// BusinessProfile is the issuing business. It outlives any single document.
type BusinessProfile struct {
	Name       string `json:"name" yaml:"name"`
	Address    string `json:"address" yaml:"address"`
	City       string `json:"city" yaml:"city"`
	PostalCode string `json:"postalCode" yaml:"postalCode"`
	Phone      string `json:"phone" yaml:"phone"`
	Email      string `json:"email" yaml:"email"`
	Website    string `json:"website,omitempty" yaml:"website,omitempty"`
	TaxID      string `json:"taxId,omitempty" yaml:"taxId,omitempty"`
	Logo       string `json:"logo,omitempty" yaml:"logo,omitempty"` // data URL (data:image/png;base64,...)
}

// PartyInfo is the client a document is addressed to.
type PartyInfo struct {
	Name       string `json:"name" yaml:"name"`
	Address    string `json:"address" yaml:"address"`
	City       string `json:"city" yaml:"city"`
	PostalCode string `json:"postalCode" yaml:"postalCode"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

type LineItem struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Rate        float64 `json:"rate" yaml:"rate"`
	Amount      float64 `json:"amount" yaml:"amount"` // always Quantity * Rate
}

// Document is one invoice, quotation or receipt being edited.
// Totals are derived and not stored on it.
type Document struct {
	Type           DocumentType    `json:"documentType" yaml:"documentType"`
	Business       BusinessProfile `json:"businessInfo" yaml:"businessInfo"`
	Client         PartyInfo       `json:"clientInfo" yaml:"clientInfo"`
	LineItems      []LineItem      `json:"lineItems" yaml:"lineItems"`
	DocumentNumber string          `json:"documentNumber" yaml:"documentNumber"`
	DateIssued     string          `json:"dateIssued" yaml:"dateIssued"` // YYYY-MM-DD
	DueDate        string          `json:"dueDate" yaml:"dueDate"`       // YYYY-MM-DD, ignored for receipts
	Notes          string          `json:"notes" yaml:"notes"`
	VATRate        float64         `json:"vatRate" yaml:"vatRate"` // percent, not clamped
}

// Clone returns a deep copy that shares no mutable state with d.
func (d Document) Clone() Document {
	c := d
	if d.LineItems != nil {
		c.LineItems = make([]LineItem, len(d.LineItems))
		copy(c.LineItems, d.LineItems)
	}
	return c
}

type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	VATAmount float64 `json:"vatAmount"`
	Total     float64 `json:"total"`
}

// Snapshot is a frozen copy of a document together with totals computed from it.
type Snapshot struct {
	Document Document
	Totals   Totals
}

// SavedDocumentRecord is a persisted document plus denormalized list fields.
type SavedDocumentRecord struct {
	ID             string       `json:"id"`
	Type           DocumentType `json:"type"`
	DocumentNumber string       `json:"documentNumber"`
	ClientName     string       `json:"clientName"`
	Total          float64      `json:"total"`
	DateCreated    time.Time    `json:"dateCreated"`
	DateUpdated    time.Time    `json:"dateUpdated"`
	Document       Document     `json:"documentData"`
}

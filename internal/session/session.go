// Package session holds the document being edited and the id of the saved
// record it came from, if any.
package session

import (
	"errors"
	"time"

	"billdocs/internal/document"
	"billdocs/internal/format"
	"billdocs/pkg/models"
)

const firstDocumentNumber = "001"

// ErrLineItemNotFound is returned when an edit names a line item id the document does not have.
var ErrLineItemNotFound = errors.New("line item not found")

// Session is the transient editing state. EditingDocumentID is empty while
// the document has never been saved.
type Session struct {
	Document          models.Document `json:"document" yaml:"document"`
	EditingDocumentID string          `json:"editingDocumentId,omitempty" yaml:"editingDocumentId,omitempty"`
}

// New starts a blank invoice for profile, dated now.
func New(profile models.BusinessProfile, now time.Time) *Session {
	return &Session{
		Document: models.Document{
			Type:           models.DocumentTypeInvoice,
			Business:       profile,
			LineItems:      []models.LineItem{document.NewLineItem()},
			DocumentNumber: firstDocumentNumber,
			DateIssued:     format.ISODate(now),
		},
	}
}

// AddLineItem appends a blank row and returns it.
func (s *Session) AddLineItem() models.LineItem {
	item := document.NewLineItem()
	s.Document.LineItems = append(s.Document.LineItems, item)
	return item
}

// RemoveLineItem drops row id. A document always keeps at least one row, so
// removing the last one leaves a fresh blank row in its place.
func (s *Session) RemoveLineItem(id string) error {
	items := s.Document.LineItems
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrLineItemNotFound
	}

	kept := make([]models.LineItem, 0, len(items))
	kept = append(kept, items[:idx]...)
	kept = append(kept, items[idx+1:]...)
	if len(kept) == 0 {
		kept = append(kept, document.NewLineItem())
	}
	s.Document.LineItems = kept
	return nil
}

// EditLineItem sets one field of row id and recomputes its amount.
func (s *Session) EditLineItem(id string, field document.Field, value any) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	item, err := document.RecomputeLineItem(s.Document.LineItems[idx], field, value)
	if err != nil {
		return err
	}
	s.Document.LineItems[idx] = item
	return nil
}

func (s *Session) SetBusinessProfile(p models.BusinessProfile) {
	s.Document.Business = p
}

func (s *Session) SetClient(c models.PartyInfo) {
	s.Document.Client = c
}

// LoadRecord replaces the document with a copy of rec's and remembers rec
// as the record being edited.
func (s *Session) LoadRecord(rec models.SavedDocumentRecord) {
	s.Document = rec.Document.Clone()
	if len(s.Document.LineItems) == 0 {
		s.Document.LineItems = []models.LineItem{document.NewLineItem()}
	}
	s.EditingDocumentID = rec.ID
}

// Reset prepares the next document after a download: the client, items,
// dates, notes and VAT are cleared and the number advances. Business
// details and the document type carry over.
func (s *Session) Reset(now time.Time) {
	d := &s.Document
	d.Client = models.PartyInfo{}
	d.LineItems = []models.LineItem{document.NewLineItem()}
	d.DocumentNumber = document.NextDocumentNumber(d.DocumentNumber)
	d.DateIssued = format.ISODate(now)
	d.DueDate = ""
	d.Notes = ""
	d.VATRate = 0
	s.EditingDocumentID = ""
}

// Totals computes the totals of the live document.
func (s *Session) Totals() models.Totals {
	return document.Snapshot(s.Document).Totals
}

// Snapshot freezes the live document for persisting or rendering.
func (s *Session) Snapshot() models.Snapshot {
	return document.Snapshot(s.Document)
}

func (s *Session) indexOf(id string) int {
	for i, item := range s.Document.LineItems {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Package document holds the pure computations over billing documents:
// line item arithmetic, totals, numbering and the per-type vocabulary.
//
// Nothing here performs I/O. Inputs are never clamped or rejected for being
// out of range; callers validate what users type.
package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"billdocs/pkg/models"
)

// Field names an editable line item column.
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldRate        Field = "rate"
)

// NewLineItem returns the blank row a fresh document starts with.
func NewLineItem() models.LineItem {
	return models.LineItem{
		ID:       uuid.NewString(),
		Quantity: 1,
	}
}

// RecomputeLineItem applies one field edit and keeps Amount equal to
// Quantity * Rate, using the updated value.
func RecomputeLineItem(item models.LineItem, field Field, value any) (models.LineItem, error) {
	switch field {
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return item, fmt.Errorf("%w: %s expects text, got %T", ErrInvalidValue, field, value)
		}
		item.Description = s
		return item, nil
	case FieldQuantity, FieldRate:
		n, err := toNumber(value)
		if err != nil {
			return item, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
		}
		if field == FieldQuantity {
			item.Quantity = n
		} else {
			item.Rate = n
		}
		item.Amount = item.Quantity * item.Rate
		return item, nil
	default:
		return item, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// ComputeTotals sums item amounts in order and applies a flat VAT percentage.
// vatRatePercent is used as given, including values outside 0..100.
func ComputeTotals(items []models.LineItem, vatRatePercent float64) models.Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}
	vat := subtotal * (vatRatePercent / 100)
	return models.Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal + vat,
	}
}

// Snapshot freezes a deep copy of doc with freshly computed totals. Each
// item's Amount is recomputed from Quantity and Rate, so a stale stored
// amount never reaches totals or renderers.
func Snapshot(doc models.Document) models.Snapshot {
	c := doc.Clone()
	for i := range c.LineItems {
		c.LineItems[i].Amount = c.LineItems[i].Quantity * c.LineItems[i].Rate
	}
	return models.Snapshot{
		Document: c,
		Totals:   ComputeTotals(c.LineItems, c.VATRate),
	}
}

// NextDocumentNumber increments the leading integer of current and pads the
// result to three digits. Numbers without a leading integer restart at "001".
// The increment works on the digit string, so any length is supported.
func NextDocumentNumber(current string) string {
	s := strings.TrimSpace(current)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	digits := []byte(strings.TrimLeft(s[:end], "0"))
	if len(digits) == 0 {
		digits = []byte{'0'}
	}
	i := len(digits) - 1
	for ; i >= 0 && digits[i] == '9'; i-- {
		digits[i] = '0'
	}
	if i < 0 {
		digits = append([]byte{'1'}, digits...)
	} else {
		digits[i]++
	}

	next := string(digits)
	if pad := 3 - len(next); pad > 0 {
		next = strings.Repeat("0", pad) + next
	}
	return next
}

// toNumber converts an edit value to a finite float64.
func toNumber(value any) (float64, error) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%v is not a finite number", n)
	}
	return n, nil
}

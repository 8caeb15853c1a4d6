package document

import "billdocs/pkg/models"

// Title is the heading printed at the top of a document.
func Title(t models.DocumentType) string {
	switch t {
	case models.DocumentTypeInvoice:
		return "INVOICE"
	case models.DocumentTypeQuotation:
		return "QUOTATION"
	case models.DocumentTypeReceipt:
		return "RECEIPT"
	default:
		return "DOCUMENT"
	}
}

// Label is the short name used in "<Label> #: 001".
func Label(t models.DocumentType) string {
	switch t {
	case models.DocumentTypeInvoice:
		return "Invoice"
	case models.DocumentTypeQuotation:
		return "Quote"
	case models.DocumentTypeReceipt:
		return "Receipt"
	default:
		return "Document"
	}
}

func DateLabel(t models.DocumentType) string {
	if t == models.DocumentTypeReceipt {
		return "Date:"
	}
	return "Date Issued:"
}

// HasDueDate reports whether the type carries a due date at all.
func HasDueDate(t models.DocumentType) bool {
	return t != models.DocumentTypeReceipt
}

func DueDateLabel(t models.DocumentType) string {
	if t == models.DocumentTypeQuotation {
		return "Valid Until:"
	}
	return "Due Date:"
}

func PartyLabel(t models.DocumentType) string {
	if t == models.DocumentTypeReceipt {
		return "Received From:"
	}
	return "Bill To:"
}

// Known reports whether t is one of the supported document types.
func Known(t models.DocumentType) bool {
	switch t {
	case models.DocumentTypeInvoice, models.DocumentTypeQuotation, models.DocumentTypeReceipt:
		return true
	}
	return false
}

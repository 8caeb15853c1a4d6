// Package validation checks what users typed before it reaches a session.
// The document computations themselves accept any numbers.
package validation

import (
	"math"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"billdocs/pkg/models"
)

const dateLayout = "2006-01-02"

var logoURL = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// ValidateDocument checks the document and the business and client
// details it carries. The VAT rate is not range-checked; see VATOutOfRange.
func ValidateDocument(doc models.Document) error {
	return validation.Errors{
		"document":     validateFields(&doc),
		"businessInfo": ValidateProfile(doc.Business),
		"clientInfo":   ValidateParty(doc.Client),
	}.Filter()
}

func validateFields(doc *models.Document) error {
	return validation.ValidateStruct(doc,
		validation.Field(&doc.Type,
			validation.Required,
			validation.In(models.DocumentTypeInvoice, models.DocumentTypeQuotation, models.DocumentTypeReceipt),
		),
		validation.Field(&doc.LineItems, validation.Required, validation.Each(validation.By(validateLineItem))),
		validation.Field(&doc.DateIssued, validation.Date(dateLayout)),
		validation.Field(&doc.DueDate, validation.Date(dateLayout)),
		validation.Field(&doc.VATRate, finite),
	)
}

// finite rejects NaN and infinities, which Min and Max let through.
var finite = validation.By(func(value interface{}) error {
	f, ok := value.(float64)
	if ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return validation.NewError("validation_finite", "must be a finite number")
	}
	return nil
})

func validateLineItem(value interface{}) error {
	item, ok := value.(models.LineItem)
	if !ok {
		return validation.NewError("validation_line_item", "must be a line item")
	}
	return validation.ValidateStruct(&item,
		validation.Field(&item.ID, validation.Required),
		validation.Field(&item.Quantity, finite, validation.Min(0.0)),
		validation.Field(&item.Rate, finite, validation.Min(0.0)),
	)
}

// ValidateProfile checks the business profile. Every field is optional;
// present ones must be well formed.
func ValidateProfile(p models.BusinessProfile) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.EmailFormat),
		validation.Field(&p.Website, is.URL),
		validation.Field(&p.Logo, validation.Match(logoURL).Error("must be a base64 data:image URL")),
	)
}

func ValidateParty(c models.PartyInfo) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, is.EmailFormat),
	)
}

// VATOutOfRange reports a rate outside 0..100. Such rates are still used
// as entered.
func VATOutOfRange(rate float64) bool {
	return rate < 0 || rate > 100
}

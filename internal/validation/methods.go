package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Validator collects field errors of an inbound request.
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records the first error seen for a field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks that a value is present and non-zero.
func (v *Validator) Required(field string, value interface{}) {
	if value == nil {
		v.AddError(field, "is required")
		return
	}

	switch val := value.(type) {
	case string:
		v.Check(strings.TrimSpace(val) != "", field, "must not be empty")
	case uint:
		v.Check(val != 0, field, "is required")
	case int:
		v.Check(val != 0, field, "is required")
	}
}

// Amount checks that a monetary value is positive and has at most two
// decimal places.
func (v *Validator) Amount(field string, amount decimal.Decimal) {
	v.Check(amount.IsPositive(), field, "must be greater than zero")
	v.Check(amount.Equal(amount.Truncate(MaxAmountScale)), field,
		fmt.Sprintf("must have at most %d decimal places", MaxAmountScale))
}

// Error joins the collected errors in field order.
func (v *Validator) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+v.Errors[field])
	}
	return strings.Join(parts, "; ")
}

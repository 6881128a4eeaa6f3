// =============================================================================
// Invoice Sync - Transformation Engine
// =============================================================================
//
// This module applies configured text transformations to row fields before
// rows are aggregated. Typical uses:
//   - Normalizing vendor codes (trim, uppercase)
//   - Zero-padding account numbers to the ledger's fixed width
//   - Mapping legacy tax codes to ledger VAT codes with a lookup table
//
// Rules are checked when the Transformer is built, so a bad rule stops the
// run before any row is read instead of failing halfway through.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/config"
)

// Transformable field names, as used in config transformation_rules.
const (
	FieldInvoiceNumber    = "invoice_number"
	FieldVendorCode       = "vendor_code"
	FieldPaymentTerms     = "payment_terms"
	FieldSigner           = "signer"
	FieldCostObject       = "cost_object"
	FieldPrelimBooking    = "prelim_booking"
	FieldSourceCode       = "source_code"
	FieldAccountNumber    = "account_number"
	FieldDetailCostObject = "detail_cost_object"
	FieldTaxCode          = "tax_code"
	FieldArticleCode      = "article_code"
	FieldPeriodCode       = "period_code"
)

var transformableFields = map[string]bool{
	FieldInvoiceNumber:    true,
	FieldVendorCode:       true,
	FieldPaymentTerms:     true,
	FieldSigner:           true,
	FieldCostObject:       true,
	FieldPrelimBooking:    true,
	FieldSourceCode:       true,
	FieldAccountNumber:    true,
	FieldDetailCostObject: true,
	FieldTaxCode:          true,
	FieldArticleCode:      true,
	FieldPeriodCode:       true,
}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules map[string][]compiledAction
}

type compiledAction struct {
	action config.TransformationAction
	re     *regexp.Regexp
	length int
}

// NewTransformer validates and compiles the given rules.
//
// RETURNS:
//   - A Transformer ready for use. A nil or empty rule list yields a
//     Transformer that returns every value unchanged.
//   - An error naming the first invalid rule.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: make(map[string][]compiledAction)}

	for _, rule := range rules {
		if !transformableFields[rule.Field] {
			return nil, fmt.Errorf("transformation rule: unknown field %q", rule.Field)
		}
		for _, action := range rule.Actions {
			compiled, err := compileAction(action)
			if err != nil {
				return nil, fmt.Errorf("transformation rule for %s: %w", rule.Field, err)
			}
			t.rules[rule.Field] = append(t.rules[rule.Field], compiled)
		}
	}

	return t, nil
}

func compileAction(action config.TransformationAction) (compiledAction, error) {
	c := compiledAction{action: action}

	switch action.Type {
	case "trim", "uppercase", "lowercase", "prepend_string", "append_string",
		"remove_leading_zeros", "replace", "lookup":
	case "pad_zeros_to_length":
		n, err := strconv.Atoi(action.Value)
		if err != nil || n <= 0 {
			return c, fmt.Errorf("pad_zeros_to_length needs a positive length, got %q", action.Value)
		}
		c.length = n
	case "regex_replace":
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return c, fmt.Errorf("invalid regex pattern: %w", err)
		}
		c.re = re
	default:
		return c, fmt.Errorf("unknown transformation type: %s", action.Type)
	}

	return c, nil
}

// Transform applies the rules for fieldName to value, in order.
func (t *Transformer) Transform(fieldName, value string) string {
	if t == nil {
		return value
	}
	for _, c := range t.rules[fieldName] {
		value = c.apply(value)
	}
	return value
}

func (c compiledAction) apply(value string) string {
	action := c.action

	switch action.Type {
	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "prepend_string":
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "pad_zeros_to_length":
		// Empty stays empty; padding a blank cell would invent a code.
		if value == "" {
			return value
		}
		return PadLeft(value, c.length, '0')

	case "remove_leading_zeros":
		result := strings.TrimLeft(value, "0")
		if result == "" && value != "" {
			return "0"
		}
		return result

	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		return c.re.ReplaceAllString(value, action.Value)

	case "lookup":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement
		}
		return value
	}

	return value
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

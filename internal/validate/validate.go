// Package validate evaluates static per-field constraints against
// incoming payload values. A field yields at most one error message
// (first failing check wins); a form accumulates one message per
// failing field.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is the constraint set for a single field. Checks run in a fixed
// order: Required, MinLength, MaxLength, Pattern, Validate, Enum.
// Message, when set, replaces the default text for whichever check
// fails. Label names the field in default messages.
type Rule struct {
	Label     string
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Enum      []string
	Validate  func(string) bool
	Message   string
}

func (r Rule) label() string {
	if r.Label != "" {
		return r.Label
	}
	return "This field"
}

func (r Rule) message(def string) string {
	if r.Message != "" {
		return r.Message
	}
	return def
}

// Field checks value against rule and returns an error message, or ""
// when the value is valid. A value is empty when it trims to "";
// empty optional fields skip every remaining check.
func Field(value string, rule Rule) string {
	empty := strings.TrimSpace(value) == ""

	if rule.Required && empty {
		return rule.message(rule.label() + " is required")
	}
	if empty {
		return ""
	}

	// Length limits count characters, not bytes, so multibyte input
	// is not rejected early.
	if rule.MinLength > 0 && utf8.RuneCountInString(value) < rule.MinLength {
		return rule.message(fmt.Sprintf("%s must be at least %d characters", rule.label(), rule.MinLength))
	}
	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return rule.message(fmt.Sprintf("%s must be less than %d characters", rule.label(), rule.MaxLength))
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return rule.message(rule.label() + " format is invalid")
	}
	if rule.Validate != nil && !rule.Validate(value) {
		return rule.message(rule.label() + " is invalid")
	}
	if len(rule.Enum) > 0 && !contains(rule.Enum, value) {
		return rule.message(fmt.Sprintf("%s must be one of: %s", rule.label(), strings.Join(rule.Enum, ", ")))
	}
	return ""
}

// Form validates each field in schema against values and returns the
// per-field error messages. Missing keys validate as empty strings, so
// required fields still report. An empty map means the form is valid.
func Form(values map[string]string, schema map[string]Rule) map[string]string {
	errs := make(map[string]string)
	for field, rule := range schema {
		if msg := Field(values[field], rule); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

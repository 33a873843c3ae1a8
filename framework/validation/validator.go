// Package validation checks command-line arguments and request bodies
// against pipe-separated rule strings.
//
//	v := validation.Make(map[string]string{"command": "build"}, validation.Rules{
//	    "command": "required|in:build,test",
//	})
//	if v.Fails() {
//	    return v.Errors()
//	}
//
// Rules:
//   - required         value must be non-blank
//   - in:a,b,c         value must be one of the listed choices
//   - not_in:a,b,c     value must not be one of the listed choices
//   - integer          parseable as int
//   - boolean          true/false/1/0/yes/no (case-insensitive)
//   - alpha_dash       letters, numbers, dashes, underscores and dots
//   - regex:pattern    must match the regular expression
//   - sometimes        skip the remaining rules when the value is empty
//
// Rules for a field stop at the first failure. Choice lists that may contain
// "|" or "," go through Validator.OneOf instead of an in: rule.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ── Errors ───────────────────────────────────────────────────────────────────

// Errors maps each failing field to its messages.
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message, fields in sorted order.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for field := range e.Bag {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, e.Bag[field]...)
	}
	return strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules maps a field to its pipe-separated rule string.
type Rules map[string]string

// Validator validates a flat map of argument values.
type Validator struct {
	data    map[string]string
	rules   Rules
	choices map[string][]string
	errors  *Errors
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// OneOf restricts field to exactly one of choices once its rule string
// passes. Choices are compared verbatim, so they may contain the rule
// separators "|" and ",".
func (v *Validator) OneOf(field string, choices []string) *Validator {
	if v.choices == nil {
		v.choices = make(map[string][]string)
	}
	v.choices[field] = append([]string(nil), choices...)
	return v
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the error bag of the last run.
func (v *Validator) Errors() *Errors { return v.errors }

func (v *Validator) validate() {
	v.errors = &Errors{}
	for field, ruleStr := range v.rules {
		if v.applyRules(field, ruleStr) {
			v.applyChoices(field)
		}
	}
	for field := range v.choices {
		if _, ruled := v.rules[field]; !ruled {
			v.applyChoices(field)
		}
	}
}

// applyRules returns false when a rule failed or "sometimes" skipped the
// field.
func (v *Validator) applyRules(field, ruleStr string) bool {
	value := v.data[field]
	for _, rule := range strings.Split(ruleStr, "|") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		name, param, _ := strings.Cut(rule, ":")
		if !v.applyRule(field, value, name, param) {
			return false
		}
	}
	return true
}

func (v *Validator) applyChoices(field string) {
	choices, ok := v.choices[field]
	if !ok {
		return
	}
	value := v.data[field]
	for _, c := range choices {
		if c == value {
			return
		}
	}
	v.addInvalidChoice(field, value, choices)
}

func (v *Validator) addInvalidChoice(field, value string, choices []string) {
	v.errors.add(field, fmt.Sprintf("The selected %s %q is invalid (choose from %s).",
		field, value, strings.Join(choices, ", ")))
}

var alphaDash = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// applyRule returns false when the remaining rules for field must be skipped.
func (v *Validator) applyRule(field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s argument is required.", field))
			return false
		}

	case "sometimes":
		if value == "" {
			return false
		}

	case "in":
		choices := splitChoices(param)
		for _, c := range choices {
			if c == value {
				return true
			}
		}
		v.addInvalidChoice(field, value, choices)
		return false

	case "not_in":
		for _, c := range splitChoices(param) {
			if c == value {
				v.errors.add(field, fmt.Sprintf("The selected %s %q is not allowed.", field, value))
				return false
			}
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "boolean":
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no":
		default:
			v.errors.add(field, fmt.Sprintf("The %s must be true or false.", field))
			return false
		}

	case "alpha_dash":
		if !alphaDash.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dots, dashes and underscores.", field))
			return false
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}
	}

	return true
}

func splitChoices(param string) []string {
	if param == "" {
		return nil
	}
	parts := strings.Split(param, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

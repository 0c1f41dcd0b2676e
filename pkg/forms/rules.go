package forms

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ruleSet is the compiled view of a field's declarative constraints.
type ruleSet struct {
	required bool
	min      *float64
	max      *float64
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
	enum     []string
}

func compileRules(field Field) (ruleSet, error) {
	rules := ruleSet{required: field.Required}
	for _, v := range field.Validations {
		switch v.Kind {
		case ValidationRuleMin:
			value, ok := parseFloat(v.Params["value"])
			if !ok {
				return ruleSet{}, fmt.Errorf("forms: field %q: invalid min threshold %q", field.Name, v.Params["value"])
			}
			rules.min = &value
		case ValidationRuleMax:
			value, ok := parseFloat(v.Params["value"])
			if !ok {
				return ruleSet{}, fmt.Errorf("forms: field %q: invalid max threshold %q", field.Name, v.Params["value"])
			}
			rules.max = &value
		case ValidationRuleMinLength:
			value, ok := parseInt(v.Params["value"])
			if !ok {
				return ruleSet{}, fmt.Errorf("forms: field %q: invalid minLength %q", field.Name, v.Params["value"])
			}
			rules.minLen = &value
		case ValidationRuleMaxLength:
			value, ok := parseInt(v.Params["value"])
			if !ok {
				return ruleSet{}, fmt.Errorf("forms: field %q: invalid maxLength %q", field.Name, v.Params["value"])
			}
			rules.maxLen = &value
		case ValidationRulePattern:
			expr := v.Params["pattern"]
			re, err := regexp.Compile(expr)
			if err != nil {
				return ruleSet{}, fmt.Errorf("forms: field %q: invalid pattern %q: %w", field.Name, expr, err)
			}
			rules.pattern = re
		}
	}
	for _, option := range field.Enum {
		rules.enum = append(rules.enum, fmt.Sprint(option))
	}
	return rules, nil
}

func (r ruleSet) validateString(value string) error {
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("must be at least %d characters", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("must be at most %d characters", *r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return errors.New("does not match the required pattern")
	}
	if len(r.enum) > 0 && !containsString(r.enum, value) {
		return fmt.Errorf("%q is not one of the available choices", value)
	}
	return nil
}

func (r ruleSet) validateNumber(value float64) error {
	if r.min != nil && value < *r.min {
		return fmt.Errorf("must be at least %v", *r.min)
	}
	if r.max != nil && value > *r.max {
		return fmt.Errorf("must be at most %v", *r.max)
	}
	return nil
}

func (r ruleSet) validateArray(values []any) error {
	if r.minLen != nil && len(values) < *r.minLen {
		return fmt.Errorf("select at least %d items", *r.minLen)
	}
	if r.maxLen != nil && len(values) > *r.maxLen {
		return fmt.Errorf("select at most %d items", *r.maxLen)
	}
	if len(r.enum) > 0 {
		for _, value := range values {
			if !containsString(r.enum, fmt.Sprint(value)) {
				return fmt.Errorf("%v is not one of the available choices", value)
			}
		}
	}
	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

func parseFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	return value, err == nil
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	return value, err == nil
}

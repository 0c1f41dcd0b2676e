package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions: it walks
// the form's fields, prompts for each one, and serializes the collected
// values. Invalid input is reported and the prompt repeats.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver()
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field and returns the serialized values.
// RenderOptions.Values seeds prompt defaults; RenderOptions.Errors are shown
// before the matching field is prompted again.
func (r *Renderer) Render(ctx context.Context, form forms.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	values := make(map[string]any, len(form.Fields))
	for name, value := range opts.Values {
		values[name] = value
	}

	for _, field := range form.Fields {
		for _, message := range opts.Errors[field.Name] {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s: %s", field.Name, message))
		}
		if err := r.promptField(ctx, field, values); err != nil {
			return nil, err
		}
	}

	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, field forms.Field, values map[string]any) error {
	rules := collectPromptRules(field)

	switch {
	case field.Type == forms.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, values)
	case field.Type == forms.FieldTypeArray && len(field.Enum) > 0:
		return r.promptMultiSelect(ctx, field, rules, values)
	case field.Type == forms.FieldTypeArray:
		return r.promptArray(ctx, field, rules, values)
	case len(field.Enum) > 0:
		return r.promptEnum(ctx, field, rules, values)
	case field.Type == forms.FieldTypeInteger, field.Type == forms.FieldTypeNumber:
		return r.promptNumber(ctx, field, rules, values)
	default:
		return r.promptString(ctx, field, rules, values)
	}
}

func (r *Renderer) promptString(ctx context.Context, field forms.Field, rules promptRules, values map[string]any) error {
	label := displayLabel(field)
	defaultVal := defaultStringValue(values, field)

	usePassword := field.Metadata["widget"] == "password"
	isTextArea := field.Metadata["widget"] == "textarea"

	for {
		var response string
		var err error
		cfg := InputConfig{
			Message: label,
			Default: defaultVal,
			Help:    field.Description,
		}
		switch {
		case usePassword:
			response, err = r.driver.Password(ctx, cfg)
		case isTextArea:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{
				Message: label,
				Default: defaultVal,
				Help:    field.Description,
			})
		default:
			response, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		if !rules.required && strings.TrimSpace(response) == "" {
			return nil
		}
		if err := rules.validateString(response); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}

		values[field.Name] = response
		return nil
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, field forms.Field, values map[string]any) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: defaultBoolValue(values, field),
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	values[field.Name] = resp
	return nil
}

func (r *Renderer) promptNumber(ctx context.Context, field forms.Field, rules promptRules, values map[string]any) error {
	label := displayLabel(field)
	integer := field.Type == forms.FieldTypeInteger

	defaultStr := ""
	if v, ok := numberDefault(values, field); ok {
		defaultStr = fmt.Sprint(v)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: defaultStr,
			Help:    field.Description,
		})
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			if rules.required {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: required", field.Name))
				continue
			}
			return nil
		}

		var parsed any
		if integer {
			i, err := strconv.ParseInt(input, 10, 64)
			if err != nil {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
				continue
			}
			parsed = i
		} else {
			f, err := strconv.ParseFloat(input, 64)
			if err != nil {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
				continue
			}
			parsed = f
		}

		if err := rules.validateNumber(parsed); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}

		values[field.Name] = parsed
		return nil
	}
}

func (r *Renderer) promptEnum(ctx context.Context, field forms.Field, rules promptRules, values map[string]any) error {
	options := stringifyEnum(field.Enum)
	defaultIdx := indexOf(options, defaultStringValue(values, field))

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", field.Name))
			continue
		}
		selected := options[idx]
		if err := rules.validateString(selected); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}
		values[field.Name] = selected
		return nil
	}
}

func (r *Renderer) promptMultiSelect(ctx context.Context, field forms.Field, rules promptRules, values map[string]any) error {
	options := stringifyEnum(field.Enum)
	defaults := indicesOf(options, stringifySlice(values[field.Name]))

	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  displayLabel(field),
			Options:  options,
			Defaults: defaults,
			Help:     field.Description,
		})
		if err != nil {
			return err
		}
		selected := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				selected = append(selected, options[idx])
			}
		}
		if err := rules.validateArray(selected); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}
		values[field.Name] = selected
		return nil
	}
}

// promptArray collects free-form items one at a time; an empty entry ends the
// loop.
func (r *Renderer) promptArray(ctx context.Context, field forms.Field, rules promptRules, values map[string]any) error {
	label := displayLabel(field)

	var items []any
	if existing := stringifySlice(values[field.Name]); len(existing) > 0 {
		for _, item := range existing {
			items = append(items, item)
		}
	}

	for {
		entry, err := r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s (empty to finish)", label),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		entry = strings.TrimSpace(entry)
		if entry != "" {
			items = append(items, entry)
			continue
		}

		if err := rules.validateArray(items); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err))
			continue
		}
		if len(items) > 0 {
			values[field.Name] = items
		}
		return nil
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(forms.Values(values).Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return sonic.Marshal(values)
	}
}

func displayLabel(field forms.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return forms.DefaultLabeler(field.Name)
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func stringifySlice(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

func defaultStringValue(values map[string]any, field forms.Field) string {
	if v, ok := values[field.Name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := field.Default.(string); ok {
		return s
	}
	return ""
}

func defaultBoolValue(values map[string]any, field forms.Field) bool {
	if v, ok := values[field.Name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	if b, ok := field.Default.(bool); ok {
		return b
	}
	return false
}

func numberDefault(values map[string]any, field forms.Field) (any, bool) {
	if v, ok := values[field.Name]; ok {
		switch v.(type) {
		case int, int64, float64:
			return v, true
		}
	}
	switch v := field.Default.(type) {
	case int, int64, float64:
		return v, true
	}
	return nil, false
}

type promptRules struct {
	required bool
	min      *float64
	max      *float64
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
}

func collectPromptRules(field forms.Field) promptRules {
	rules := promptRules{required: field.Required}
	for _, v := range field.Validations {
		switch v.Kind {
		case forms.ValidationRuleMin:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.min = &val
			}
		case forms.ValidationRuleMax:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.max = &val
			}
		case forms.ValidationRuleMinLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.minLen = &val
			}
		case forms.ValidationRuleMaxLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.maxLen = &val
			}
		case forms.ValidationRulePattern:
			if expr := v.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					rules.pattern = re
				}
			}
		}
	}
	return rules
}

func (r promptRules) validateString(value string) error {
	if r.required && strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("min length %d", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("max length %d", *r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return errors.New("does not match required pattern")
	}
	return nil
}

func (r promptRules) validateNumber(value any) error {
	var v float64
	switch n := value.(type) {
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case float64:
		v = n
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
	if r.min != nil && v < *r.min {
		return fmt.Errorf("min %v", *r.min)
	}
	if r.max != nil && v > *r.max {
		return fmt.Errorf("max %v", *r.max)
	}
	return nil
}

func (r promptRules) validateArray(value []any) error {
	if r.required && len(value) == 0 {
		return errors.New("required")
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("min length %d", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("max length %d", *r.maxLen)
	}
	return nil
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, err == nil
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	return val, err == nil
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []any:
			for idx, item := range v {
				fmt.Fprintf(&b, "%s[%d]=%v\n", key, idx, item)
			}
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}

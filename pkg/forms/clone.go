package forms

// Clone returns a deep copy of the form. Handlers clone a prototype per
// request before adapting it so field checks and cleaners never leak between
// requests.
func (f Form) Clone() Form {
	out := f
	out.Metadata = cloneStringMap(f.Metadata)
	out.cleaners = append([]Cleaner(nil), f.cleaners...)
	if len(out.cleaners) == 0 {
		out.cleaners = nil
	}

	if len(f.Fields) > 0 {
		out.Fields = make([]Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.clone()
		}
	}
	return out
}

func (f Field) clone() Field {
	out := f
	out.Metadata = cloneStringMap(f.Metadata)
	if len(f.Enum) > 0 {
		out.Enum = append([]any(nil), f.Enum...)
	}
	if len(f.Validations) > 0 {
		out.Validations = make([]ValidationRule, len(f.Validations))
		for i, rule := range f.Validations {
			out.Validations[i] = ValidationRule{Kind: rule.Kind, Params: cloneStringMap(rule.Params)}
		}
	}
	out.checks = append([]FieldCheck(nil), f.checks...)
	if len(out.checks) == 0 {
		out.checks = nil
	}
	return out
}

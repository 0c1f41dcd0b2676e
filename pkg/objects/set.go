package objects

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

// Set returns a lazy argument that coerces whatever value args carries under
// argName into a Queryset over base:
//
//   - missing or nil becomes the empty queryset
//   - a Queryset passes through unchanged
//   - a Record filters by its primary key
//   - a slice filters by each element's key (records and raw keys may mix)
//   - any other scalar is treated as a primary key
//
// Callers that accept "a user, a list of users, or user ids" declare the
// argument once and consume a Queryset.
func Set(argName string, base Queryset) argspec.Lazy {
	return argspec.LazyFunc(func(_ context.Context, args map[string]any) (any, error) {
		value, ok := args[argName]
		if !ok || value == nil {
			return base.None(), nil
		}
		return coerce(base, value)
	})
}

func coerce(base Queryset, value any) (Queryset, error) {
	switch v := value.(type) {
	case Queryset:
		return v, nil
	case *Queryset:
		if v == nil {
			return base.None(), nil
		}
		return *v, nil
	case Record:
		return base.Filter(v.PK(base.PKColumn())), nil
	case []Record:
		pks := make([]any, 0, len(v))
		for _, record := range v {
			pks = append(pks, record.PK(base.PKColumn()))
		}
		return base.Filter(pks...), nil
	case []any:
		pks := make([]any, 0, len(v))
		for _, item := range v {
			switch record := item.(type) {
			case Record:
				pks = append(pks, record.PK(base.PKColumn()))
			default:
				pks = append(pks, item)
			}
		}
		return base.Filter(pks...), nil
	case []string:
		pks := make([]any, 0, len(v))
		for _, item := range v {
			pks = append(pks, item)
		}
		return base.Filter(pks...), nil
	case []int64:
		pks := make([]any, 0, len(v))
		for _, item := range v {
			pks = append(pks, item)
		}
		return base.Filter(pks...), nil
	case string, int, int64, float64:
		return base.Filter(v), nil
	default:
		return Queryset{}, fmt.Errorf("objects: cannot coerce %T into a queryset over %s", value, base.Table())
	}
}

// ResolveOne fetches the row for pk or returns a NotFoundError.
func ResolveOne(ctx context.Context, base Queryset, pk any) (Record, error) {
	record, ok, err := base.Filter(pk).One(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Table: base.Table(), Missing: []any{pk}}
	}
	return record, nil
}

// ResolveMany fetches the rows for pks. Every key must resolve; missing keys
// are reported in a NotFoundError.
func ResolveMany(ctx context.Context, base Queryset, pks []any) ([]Record, error) {
	if len(pks) == 0 {
		return nil, nil
	}

	records, err := base.Filter(pks...).All(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(records))
	for _, record := range records {
		found[fmt.Sprint(record.PK(base.PKColumn()))] = struct{}{}
	}

	var missing []any
	for _, pk := range pks {
		if _, ok := found[fmt.Sprint(pk)]; !ok {
			missing = append(missing, pk)
		}
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Table: base.Table(), Missing: missing}
	}
	return records, nil
}

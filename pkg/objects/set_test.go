package objects_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formbind/pkg/objects"
)

func TestSetCoercions(t *testing.T) {
	db := openTestDB(t)
	qs := usersQueryset(t, db)
	lazy := objects.Set("users", qs)

	tests := []struct {
		name      string
		value     any
		wantNames []string
		wantNone  bool
	}{
		{name: "missing value", value: nil, wantNone: true},
		{name: "single pk", value: int64(1), wantNames: []string{"ada"}},
		{name: "list of pks", value: []any{int64(1), int64(3)}, wantNames: []string{"ada", "linus"}},
		{name: "record", value: objects.Record{"id": int64(2), "username": "grace"}, wantNames: []string{"grace"}},
		{
			name: "mixed records and pks",
			value: []any{
				objects.Record{"id": int64(1)},
				int64(2),
			},
			wantNames: []string{"ada", "grace"},
		},
		{name: "queryset passthrough", value: qs.Filter(int64(3)), wantNames: []string{"linus"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := map[string]any{}
			if tc.value != nil {
				args["users"] = tc.value
			}

			resolved, err := lazy.Load(context.Background(), args)
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			got, ok := resolved.(objects.Queryset)
			if !ok {
				t.Fatalf("Load() returned %T, want Queryset", resolved)
			}

			if tc.wantNone {
				if !got.IsNone() {
					t.Fatal("expected the empty queryset")
				}
				return
			}

			records, err := got.All(context.Background())
			if err != nil {
				t.Fatalf("All() returned error: %v", err)
			}
			var names []string
			for _, record := range records {
				names = append(names, record["username"].(string))
			}
			if len(names) != len(tc.wantNames) {
				t.Fatalf("names = %v, want %v", names, tc.wantNames)
			}
			for i := range names {
				if names[i] != tc.wantNames[i] {
					t.Fatalf("names = %v, want %v", names, tc.wantNames)
				}
			}
		})
	}
}

func TestSetRejectsUnknownTypes(t *testing.T) {
	db := openTestDB(t)
	qs := usersQueryset(t, db)
	lazy := objects.Set("users", qs)

	_, err := lazy.Load(context.Background(), map[string]any{"users": struct{}{}})
	if err == nil {
		t.Fatal("Load() = nil error, want coercion rejection")
	}
}

func TestResolveOne(t *testing.T) {
	db := openTestDB(t)
	qs := usersQueryset(t, db)

	record, err := objects.ResolveOne(context.Background(), qs, int64(2))
	if err != nil {
		t.Fatalf("ResolveOne() returned error: %v", err)
	}
	if record["username"] != "grace" {
		t.Fatalf("record = %v", record)
	}

	_, err = objects.ResolveOne(context.Background(), qs, int64(42))
	if !objects.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestResolveMany(t *testing.T) {
	db := openTestDB(t)
	qs := usersQueryset(t, db)

	records, err := objects.ResolveMany(context.Background(), qs, []any{int64(1), int64(2)})
	if err != nil {
		t.Fatalf("ResolveMany() returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	_, err = objects.ResolveMany(context.Background(), qs, []any{int64(1), int64(42)})
	if !objects.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}

	if records, err := objects.ResolveMany(context.Background(), qs, nil); err != nil || records != nil {
		t.Fatalf("ResolveMany(nil) = %v, %v", records, err)
	}
}

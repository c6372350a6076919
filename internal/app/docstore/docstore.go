// Package docstore is the document-store collaborator: get, query by field,
// create, partial update and an optional change subscription.
//
// Records are bson.M keyed by a string "_id". Stores decode them into domain
// structs with Decode. Missing records surface as apperr not-found errors and
// driver failures as apperr collaborator errors, never raw driver errors.
package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
)

// IDField is the record key.
const IDField = "_id"

// Op is a query comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpIn  Op = "in"
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpIn:
		return true
	}
	return false
}

// Filter is a single field predicate. Multiple filters are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// ChangeType says what happened to a record.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
)

// Change is one entry of a subscription feed.
type Change struct {
	Collection string
	ID         string
	Type       ChangeType
}

// Store is the document-store contract. Query results are ordered by
// insertion.
type Store interface {
	Get(ctx context.Context, coll, id string) (bson.M, error)
	Query(ctx context.Context, coll string, filters ...Filter) ([]bson.M, error)
	// Create stores fields and returns the record id. A non-empty "_id" in
	// fields is honored; otherwise one is generated.
	Create(ctx context.Context, coll string, fields any) (string, error)
	// Update sets the given fields on an existing record.
	Update(ctx context.Context, coll, id string, fields any) error
	Ping(ctx context.Context) error
}

// Subscriber is implemented by stores that can push change notifications.
// The channel closes when ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, coll string) (<-chan Change, error)
}

// Encode converts a struct or map into a bson.M using its bson tags.
func Encode(v any) (bson.M, error) {
	if m, ok := v.(bson.M); ok {
		return roundTrip(m)
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return m, nil
}

// Decode fills out from a record.
func Decode(rec bson.M, out any) error {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

// DecodeAll decodes every record into a new slice.
func DecodeAll[T any](recs []bson.M) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		var v T
		if err := Decode(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func roundTrip(m bson.M) (bson.M, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return out, nil
}

// idOf pulls a usable string id out of encoded fields and removes the key.
func idOf(m bson.M) (string, error) {
	v, ok := m[IDField]
	delete(m, IDField)
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("record id must be a string, got %T", v), IDField)
	}
	return strings.TrimSpace(s), nil
}

func checkFilters(filters []Filter) error {
	for _, f := range filters {
		if strings.TrimSpace(f.Field) == "" {
			return apperr.Validation("filter field is empty", "field")
		}
		if !f.Op.valid() {
			return apperr.Validation(fmt.Sprintf("unsupported operator %q", f.Op), "op")
		}
	}
	return nil
}

func notFound(coll, id string) error {
	return apperr.NotFound(fmt.Sprintf("%s/%s", coll, id))
}

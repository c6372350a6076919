package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used by tests and memory mode.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	colls map[string]*memColl

	subMu sync.RWMutex
	subs  map[string]map[chan Change]struct{}
}

type memColl struct {
	order []string
	docs  map[string]bson.M
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		colls: make(map[string]*memColl),
		subs:  make(map[string]map[chan Change]struct{}),
	}
}

func (s *MemoryStore) coll(name string) *memColl {
	c, ok := s.colls[name]
	if !ok {
		c = &memColl{docs: make(map[string]bson.M)}
		s.colls[name] = c
	}
	return c
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(ctx context.Context, coll, id string) (bson.M, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[coll]
	if !ok {
		return nil, notFound(coll, id)
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, notFound(coll, id)
	}
	return roundTrip(doc)
}

// Query returns copies of matching records in insertion order.
func (s *MemoryStore) Query(ctx context.Context, coll string, filters ...Filter) ([]bson.M, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if err := checkFilters(filters); err != nil {
		return nil, err
	}
	norm := make([]Filter, len(filters))
	for i, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		if f.Op == OpIn {
			if _, ok := v.(bson.A); !ok {
				return nil, apperr.Validation(fmt.Sprintf("operator in needs a list, got %T", f.Value), f.Field)
			}
		}
		norm[i] = Filter{Field: f.Field, Op: f.Op, Value: v}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[coll]
	if !ok {
		return []bson.M{}, nil
	}
	out := make([]bson.M, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if matchAll(doc, norm) {
			cp, err := roundTrip(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

// Create stores a new record.
func (s *MemoryStore) Create(ctx context.Context, coll string, fields any) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}
	doc, err := Encode(fields)
	if err != nil {
		return "", err
	}
	id, err := idOf(doc)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	doc[IDField] = id

	s.mu.Lock()
	c := s.coll(coll)
	if _, dup := c.docs[id]; dup {
		s.mu.Unlock()
		return "", apperr.Collaborator("already-exists", fmt.Errorf("%s/%s exists", coll, id))
	}
	c.docs[id] = doc
	c.order = append(c.order, id)
	s.mu.Unlock()

	s.notify(Change{Collection: coll, ID: id, Type: ChangeInsert})
	return id, nil
}

// Update sets fields on an existing record. The id cannot be changed.
func (s *MemoryStore) Update(ctx context.Context, coll, id string, fields any) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	set, err := Encode(fields)
	if err != nil {
		return err
	}
	delete(set, IDField)

	s.mu.Lock()
	c, ok := s.colls[coll]
	if !ok {
		s.mu.Unlock()
		return notFound(coll, id)
	}
	doc, ok := c.docs[id]
	if !ok {
		s.mu.Unlock()
		return notFound(coll, id)
	}
	for k, v := range set {
		doc[k] = v
	}
	s.mu.Unlock()

	s.notify(Change{Collection: coll, ID: id, Type: ChangeUpdate})
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return ctxErr(ctx) }

// Subscribe streams changes to coll until ctx is done. Slow readers miss
// notifications rather than block writers.
func (s *MemoryStore) Subscribe(ctx context.Context, coll string) (<-chan Change, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	ch := make(chan Change, 16)
	s.subMu.Lock()
	set, ok := s.subs[coll]
	if !ok {
		set = make(map[chan Change]struct{})
		s.subs[coll] = set
	}
	set[ch] = struct{}{}
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs[coll], ch)
		close(ch)
		s.subMu.Unlock()
	}()
	return ch, nil
}

func (s *MemoryStore) notify(c Change) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for ch := range s.subs[c.Collection] {
		select {
		case ch <- c:
		default:
		}
	}
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return apperr.Collaborator("deadline-exceeded", err)
		}
		return apperr.Collaborator("cancelled", err)
	}
	return nil
}

// normalize converts a query value into the same representation stored
// records use, so custom string types, ints and times compare correctly.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		arr := make(bson.A, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr = append(arr, e)
		}
		return arr, nil
	}
	m, err := roundTrip(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func matchAll(doc bson.M, filters []Filter) bool {
	for _, f := range filters {
		if !match(doc[f.Field], f) {
			return false
		}
	}
	return true
}

func match(v any, f Filter) bool {
	switch f.Op {
	case OpEq:
		return equal(v, f.Value)
	case OpNe:
		return !equal(v, f.Value)
	case OpIn:
		for _, e := range f.Value.(bson.A) {
			if equal(v, e) {
				return true
			}
		}
		return false
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders numbers, strings and datetimes. ok is false for any other
// pairing, which never matches a range operator.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return cmp3(x < y, x > y), true
		}
		return 0, false
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp3(x < y, x > y), true
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmp3(x < y, x > y), true
		}
	case bool:
		if y, ok := b.(bool); ok && x == y {
			return 0, true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func cmp3(lt, gt bool) int {
	switch {
	case lt:
		return -1
	case gt:
		return 1
	}
	return 0
}

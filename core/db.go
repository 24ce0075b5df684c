package core

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.uber.org/zap"
)

// MemoryDB is a process-local DocumentStore. Documents are kept as raw BSON
// in insertion order.
type MemoryDB struct {
	collections map[string][]bson.Raw
	closed      bool
	mu          sync.RWMutex
}

func (d *MemoryDB) Setup(c *Conf) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collections = make(map[string][]bson.Raw)
	d.closed = false
	zap.L().Debug("[MemoryDB] ready")
	return nil
}

func (d *MemoryDB) Ping(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed || d.collections == nil {
		return fmt.Errorf("memory store is not available")
	}
	return ctx.Err()
}

func (d *MemoryDB) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	matched, err := d.match(collection, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (d *MemoryDB) Find(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]bson.Raw, error) {
	if opts == nil {
		opts = &FindOptions{}
	}
	if opts.Skip < 0 {
		return nil, fmt.Errorf("skip value must be non-negative, but received: %d", opts.Skip)
	}
	d.mu.RLock()
	matched, err := d.match(collection, filter)
	d.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if opts.SortKey != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			return compareField(matched[i], matched[j], opts.SortKey) < 0
		})
	}
	if opts.Skip >= int64(len(matched)) {
		return []bson.Raw{}, nil
	}
	matched = matched[opts.Skip:]
	limit := opts.Limit
	if limit < 0 {
		limit = -limit
	}
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (d *MemoryDB) Drop(ctx context.Context, collection string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.collections, collection)
	zap.L().Info(fmt.Sprintf("[MemoryDB] dropped %s", collection))
	return nil
}

func (d *MemoryDB) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	raws := make([]bson.Raw, 0, len(docs))
	for i, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		raws = append(raws, raw)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collections == nil {
		return fmt.Errorf("memory store is not set up")
	}
	d.collections[collection] = append(d.collections[collection], raws...)
	return nil
}

func (d *MemoryDB) TearDown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// match returns copies of the documents matching filter. The caller holds the
// read lock.
func (d *MemoryDB) match(collection string, filter Filter) ([]bson.Raw, error) {
	matched := []bson.Raw{}
	for _, doc := range d.collections[collection] {
		ok, err := matchFilter(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, bson.Raw(bytes.Clone(doc)))
		}
	}
	return matched, nil
}

func matchFilter(doc bson.Raw, filter Filter) (bool, error) {
	for key, want := range filter {
		got, err := doc.LookupErr(key)
		if err != nil {
			return false, nil
		}
		t, data, err := bson.MarshalValue(want)
		if err != nil {
			return false, fmt.Errorf("unsupported filter value for %s: %w", key, err)
		}
		if got.Type != t || !bytes.Equal(got.Value, data) {
			return false, nil
		}
	}
	return true, nil
}

// compareField orders missing fields first, then numbers, then strings.
func compareField(a, b bson.Raw, key string) int {
	av, aErr := a.LookupErr(key)
	bv, bErr := b.LookupErr(key)
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	}
	as, aIsStr := av.StringValueOK()
	bs, bIsStr := bv.StringValueOK()
	switch {
	case aIsStr && bIsStr:
		return strings.Compare(as, bs)
	case aIsStr:
		return 1
	case bIsStr:
		return -1
	}
	af, bf := numberOf(av), numberOf(bv)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func numberOf(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.Double:
		return v.Double()
	default:
		return 0
	}
}

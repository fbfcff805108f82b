package tablestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// MemStore serves tables from records held in memory. Used by tests and
// by callers that assemble synthetic observation stores.
type MemStore struct {
	allocator *memory.GoAllocator
	tables    map[string]arrow.Record
}

func NewMemStore(allocator *memory.GoAllocator) *MemStore {
	return &MemStore{
		allocator: allocator,
		tables:    make(map[string]arrow.Record),
	}
}

// AddTable registers a table record under the given name, replacing any
// previous record for that name.
func (obj *MemStore) AddTable(name string, record arrow.Record) *MemStore {
	record.Retain()
	if previous, ok := obj.tables[name]; ok {
		previous.Release()
	}
	obj.tables[name] = record
	return obj
}

func (obj *MemStore) ReadTable(ctx context.Context, name string, selector *Selector) (arrow.Record, error) {
	record, ok := obj.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w| %s", ErrTableNotFound, name)
	}
	return applySelector(obj.allocator, record, selector)
}

func (obj *MemStore) TableNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(obj.tables))
	for name := range obj.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (obj *MemStore) HasTable(ctx context.Context, name string) bool {
	_, ok := obj.tables[name]
	return ok
}

// Release drops all held table records.
func (obj *MemStore) Release() {
	for name, record := range obj.tables {
		record.Release()
		delete(obj.tables, name)
	}
}

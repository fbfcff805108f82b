package tablestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/arrowops"
)

const parquetExt = ".parquet"

// DirStore reads a directory-like observation store where every table is
// a parquet file named <TABLE>.parquet.
type DirStore struct {
	allocator *memory.GoAllocator
	path      string
}

func NewDirStore(allocator *memory.GoAllocator, path string) *DirStore {
	return &DirStore{
		allocator: allocator,
		path:      path,
	}
}

func (obj *DirStore) Path() string {
	return obj.path
}

func (obj *DirStore) tablePath(name string) string {
	return filepath.Join(obj.path, name+parquetExt)
}

func (obj *DirStore) ReadTable(ctx context.Context, name string, selector *Selector) (arrow.Record, error) {
	filePath := obj.tablePath(name)
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("%w| %s", ErrTableNotFound, name)
	}

	record, err := arrowops.ReadParquetTable(ctx, obj.allocator, filePath)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("table %s", name))
	}
	defer record.Release()

	return applySelector(obj.allocator, record, selector)
}

func (obj *DirStore) TableNames(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(obj.path)
	if err != nil {
		return nil, errs.NewStackError(err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), parquetExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), parquetExt))
	}
	sort.Strings(names)
	return names, nil
}

func (obj *DirStore) HasTable(ctx context.Context, name string) bool {
	_, err := os.Stat(obj.tablePath(name))
	return err == nil
}

// WriteTable persists a table record into the store directory. Used when
// staging synthetic or downloaded stores.
func (obj *DirStore) WriteTable(ctx context.Context, name string, record arrow.Record) error {
	if err := os.MkdirAll(obj.path, 0o755); err != nil {
		return errs.NewStackError(err)
	}
	return arrowops.WriteRecordToParquetFile(ctx, obj.allocator, record, obj.tablePath(name))
}

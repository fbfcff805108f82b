package tablestore

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/arrowops"
)

// applySelector narrows a full table record down to the requested columns
// and rows. The input record is left untouched.
func applySelector(mem *memory.GoAllocator, record arrow.Record, selector *Selector) (arrow.Record, error) {
	if selector == nil {
		record.Retain()
		return record, nil
	}

	projected := record
	if selector.Columns != nil {
		fields := make([]arrow.Field, 0, len(selector.Columns))
		columns := make([]arrow.Array, 0, len(selector.Columns))
		schema := record.Schema()
		for _, name := range selector.Columns {
			idxs := schema.FieldIndices(name)
			if len(idxs) == 0 {
				return nil, fmt.Errorf("%w| column %s", arrowops.ErrColumnNotFound, name)
			}
			fields = append(fields, schema.Field(idxs[0]))
			columns = append(columns, record.Column(idxs[0]))
		}
		projected = array.NewRecord(arrow.NewSchema(fields, nil), columns, record.NumRows())
	} else {
		projected.Retain()
	}

	if selector.Rows == nil {
		return projected, nil
	}
	defer projected.Release()

	for _, row := range selector.Rows {
		if row < 0 || row >= int(projected.NumRows()) {
			return nil, fmt.Errorf("%w| row %d of %d", ErrRowOutOfRange, row, projected.NumRows())
		}
	}
	return arrowops.TakeRecord(mem, projected, selector.Rows)
}

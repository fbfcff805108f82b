package arrowops

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

/*
* Build a new record holding the rows of the input record at the given
* indices, in index order. Only the column types appearing in observation
* tables are supported, including the list-valued sample payload columns.
 */
func TakeRecord(mem *memory.GoAllocator, record arrow.Record, indices []int) (arrow.Record, error) {
	record.Retain()
	defer record.Release()

	takenFields := make([]arrow.Array, record.NumCols())
	for i := 0; i < int(record.NumCols()); i++ {
		takenRows, err := TakeArray(mem, record.Column(i), indices)
		if err != nil {
			return nil, err
		}
		takenFields[i] = takenRows
	}
	return array.NewRecord(record.Schema(), takenFields, int64(len(indices))), nil
}

func TakeArray(mem *memory.GoAllocator, arr arrow.Array, indices []int) (arrow.Array, error) {
	switch arr.DataType().ID() {
	case arrow.BOOL:
		return takeBoolArray(mem, arr.(*array.Boolean), indices), nil
	case arrow.INT32:
		return takeInt32Array(mem, arr.(*array.Int32), indices), nil
	case arrow.INT64:
		return takeInt64Array(mem, arr.(*array.Int64), indices), nil
	case arrow.FLOAT32:
		return takeFloat32Array(mem, arr.(*array.Float32), indices), nil
	case arrow.FLOAT64:
		return takeFloat64Array(mem, arr.(*array.Float64), indices), nil
	case arrow.STRING:
		return takeStringArray(mem, arr.(*array.String), indices), nil
	case arrow.LIST:
		return takeListArray(mem, arr.(*array.List), indices)
	default:
		return nil, ErrUnsupportedDataType
	}
}

func takeBoolArray(mem *memory.GoAllocator, arr *array.Boolean, indices []int) *array.Boolean {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewBooleanArray()
}

func takeInt32Array(mem *memory.GoAllocator, arr *array.Int32, indices []int) *array.Int32 {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewInt32Array()
}

func takeInt64Array(mem *memory.GoAllocator, arr *array.Int64, indices []int) *array.Int64 {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewInt64Array()
}

func takeFloat32Array(mem *memory.GoAllocator, arr *array.Float32, indices []int) *array.Float32 {
	b := array.NewFloat32Builder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewFloat32Array()
}

func takeFloat64Array(mem *memory.GoAllocator, arr *array.Float64, indices []int) *array.Float64 {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewFloat64Array()
}

func takeStringArray(mem *memory.GoAllocator, arr *array.String, indices []int) *array.String {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		b.Append(arr.Value(idx))
	}
	return b.NewStringArray()
}

func takeListArray(mem *memory.GoAllocator, arr *array.List, indices []int) (arrow.Array, error) {
	listType, ok := arr.DataType().(*arrow.ListType)
	if !ok {
		return nil, ErrUnsupportedDataType
	}

	b := array.NewListBuilder(mem, listType.Elem())
	defer b.Release()

	switch values := arr.ListValues().(type) {
	case *array.Float32:
		vb := b.ValueBuilder().(*array.Float32Builder)
		for _, idx := range indices {
			b.Append(true)
			start, end := arr.ValueOffsets(idx)
			for j := start; j < end; j++ {
				vb.Append(values.Value(int(j)))
			}
		}
	case *array.Float64:
		vb := b.ValueBuilder().(*array.Float64Builder)
		for _, idx := range indices {
			b.Append(true)
			start, end := arr.ValueOffsets(idx)
			for j := start; j < end; j++ {
				vb.Append(values.Value(int(j)))
			}
		}
	case *array.String:
		vb := b.ValueBuilder().(*array.StringBuilder)
		for _, idx := range indices {
			b.Append(true)
			start, end := arr.ValueOffsets(idx)
			for j := start; j < end; j++ {
				vb.Append(values.Value(int(j)))
			}
		}
	default:
		return nil, ErrUnsupportedDataType
	}

	return b.NewListArray(), nil
}

package arrowops

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// RecordColumn finds the single column with the given field name.
func RecordColumn(record arrow.Record, name string) (arrow.Array, error) {
	columnIdxs := record.Schema().FieldIndices(name)
	if len(columnIdxs) == 0 {
		return nil, fmt.Errorf("%w| %s", ErrColumnNotFound, name)
	} else if len(columnIdxs) > 1 {
		return nil, fmt.Errorf("%w| %s", ErrMultipleColumnsFound, name)
	}
	return record.Column(columnIdxs[0]), nil
}

func Int32Column(record arrow.Record, name string) ([]int32, error) {
	arr, err := RecordColumn(record, name)
	if err != nil {
		return nil, err
	}
	typed, ok := arr.(*array.Int32)
	if !ok {
		return nil, fmt.Errorf("%w| column %s is %s", ErrUnsupportedDataType, name, arr.DataType())
	}
	values := make([]int32, typed.Len())
	copy(values, typed.Int32Values())
	return values, nil
}

func Float64Column(record arrow.Record, name string) ([]float64, error) {
	arr, err := RecordColumn(record, name)
	if err != nil {
		return nil, err
	}
	typed, ok := arr.(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("%w| column %s is %s", ErrUnsupportedDataType, name, arr.DataType())
	}
	values := make([]float64, typed.Len())
	copy(values, typed.Float64Values())
	return values, nil
}

func StringColumn(record arrow.Record, name string) ([]string, error) {
	arr, err := RecordColumn(record, name)
	if err != nil {
		return nil, err
	}
	typed, ok := arr.(*array.String)
	if !ok {
		return nil, fmt.Errorf("%w| column %s is %s", ErrUnsupportedDataType, name, arr.DataType())
	}
	values := make([]string, typed.Len())
	for i := 0; i < typed.Len(); i++ {
		values[i] = typed.Value(i)
	}
	return values, nil
}

// ListColumn returns the list column with the given name or an error when
// the column exists with a non-list type.
func ListColumn(record arrow.Record, name string) (*array.List, error) {
	arr, err := RecordColumn(record, name)
	if err != nil {
		return nil, err
	}
	typed, ok := arr.(*array.List)
	if !ok {
		return nil, fmt.Errorf("%w| column %s is %s", ErrUnsupportedDataType, name, arr.DataType())
	}
	return typed, nil
}

// ListFloat32Row copies one row of a list<float32> column.
func ListFloat32Row(arr *array.List, row int) ([]float32, error) {
	values, ok := arr.ListValues().(*array.Float32)
	if !ok {
		return nil, fmt.Errorf("%w| list of %s", ErrUnsupportedDataType, arr.ListValues().DataType())
	}
	start, end := arr.ValueOffsets(row)
	out := make([]float32, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, values.Value(int(j)))
	}
	return out, nil
}

// ListFloat64Row copies one row of a list<float64> column.
func ListFloat64Row(arr *array.List, row int) ([]float64, error) {
	values, ok := arr.ListValues().(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("%w| list of %s", ErrUnsupportedDataType, arr.ListValues().DataType())
	}
	start, end := arr.ValueOffsets(row)
	out := make([]float64, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, values.Value(int(j)))
	}
	return out, nil
}

// ListStringRow copies one row of a list<string> column.
func ListStringRow(arr *array.List, row int) ([]string, error) {
	values, ok := arr.ListValues().(*array.String)
	if !ok {
		return nil, fmt.Errorf("%w| list of %s", ErrUnsupportedDataType, arr.ListValues().DataType())
	}
	start, end := arr.ValueOffsets(row)
	out := make([]string, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, values.Value(int(j)))
	}
	return out, nil
}

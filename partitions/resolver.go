package partitions

import (
	"context"
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/arrowops"
	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/subtables"
	"github.com/astrovis/vispart/tablestore"
)

// PartitionIds holds the distinct partitions present in the main table,
// in first-encounter order. The sequences are parallel: entry i describes
// partition i. Scan and State hold -1 when the component does not
// participate in the active scheme. Intents and StateIDs are populated
// only for SchemeByIntent.
type PartitionIds struct {
	DataDescID []int32
	Scan       []int32
	State      []int32
	Intents    []string
	StateIDs   [][]int32
}

func (obj *PartitionIds) Len() int {
	return len(obj.DataDescID)
}

// ResolvePartitionIds scans the main table's grouping columns and returns
// the distinct partition identifier combinations for the scheme. Every
// distinct data-description id is bounds-checked against the loaded
// subtables; a dangling reference aborts the conversion.
func ResolvePartitionIds(
	ctx context.Context,
	allocator *memory.GoAllocator,
	store tablestore.ITableStore,
	subts *subtables.Collection,
	scheme elements.PartitionScheme,
) (*PartitionIds, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}

	record, err := store.ReadTable(ctx, tablestore.MainTable, &tablestore.Selector{
		Columns: []string{tablestore.ColDataDescID, tablestore.ColScanNumber, tablestore.ColStateID},
	})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer record.Release()

	dataDescIDs, err := arrowops.Int32Column(record, tablestore.ColDataDescID)
	if err != nil {
		return nil, err
	}
	scanNumbers, err := arrowops.Int32Column(record, tablestore.ColScanNumber)
	if err != nil {
		return nil, err
	}
	stateIDs, err := arrowops.Int32Column(record, tablestore.ColStateID)
	if err != nil {
		return nil, err
	}

	var ids *PartitionIds
	switch scheme {
	case elements.SchemeByConfiguration:
		ids = distinctByConfiguration(dataDescIDs)
	case elements.SchemeByScan:
		ids = distinctByScan(dataDescIDs, scanNumbers, nil)
	case elements.SchemeByScanSubscan:
		ids = distinctByScan(dataDescIDs, scanNumbers, stateIDs)
	case elements.SchemeByIntent:
		ids, err = distinctByIntent(dataDescIDs, scanNumbers, stateIDs, subts)
		if err != nil {
			return nil, err
		}
	}

	for _, ddi := range ids.DataDescID {
		if _, _, err := subts.ConfigurationIDs(ddi); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func distinctByConfiguration(dataDescIDs []int32) *PartitionIds {
	ids := &PartitionIds{}
	seen := make(map[int32]bool)
	for _, ddi := range dataDescIDs {
		if seen[ddi] {
			continue
		}
		seen[ddi] = true
		ids.DataDescID = append(ids.DataDescID, ddi)
		ids.Scan = append(ids.Scan, -1)
		ids.State = append(ids.State, -1)
	}
	return ids
}

func distinctByScan(dataDescIDs, scanNumbers, stateIDs []int32) *PartitionIds {
	type combo struct {
		ddi   int32
		scan  int32
		state int32
	}
	ids := &PartitionIds{}
	seen := make(map[combo]bool)
	for row, ddi := range dataDescIDs {
		c := combo{ddi: ddi, scan: scanNumbers[row], state: -1}
		if stateIDs != nil {
			c.state = stateIDs[row]
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		ids.DataDescID = append(ids.DataDescID, c.ddi)
		ids.Scan = append(ids.Scan, c.scan)
		ids.State = append(ids.State, c.state)
	}
	return ids
}

// distinctByIntent groups the main table rows by (data description,
// observing intent), resolving each row's intent through the state table.
// Rows sharing an intent across several state ids land in one partition;
// the distinct state ids are kept so the reader can select those rows.
func distinctByIntent(dataDescIDs, scanNumbers, stateIDs []int32, subts *subtables.Collection) (*PartitionIds, error) {
	if subts.State == nil {
		return nil, fmt.Errorf("%w| state table required to resolve intents", elements.ErrSchema)
	}

	type combo struct {
		ddi    int32
		intent string
	}
	ids := &PartitionIds{}
	position := make(map[combo]int)
	for row, ddi := range dataDescIDs {
		stateID := stateIDs[row]
		if stateID < 0 || int(stateID) >= subts.State.NumRows() {
			return nil, fmt.Errorf("%w| state id %d outside [0,%d)", elements.ErrSchema, stateID, subts.State.NumRows())
		}
		intent := subts.State.ObsModes[stateID]

		c := combo{ddi: ddi, intent: intent}
		idx, ok := position[c]
		if !ok {
			position[c] = ids.Len()
			ids.DataDescID = append(ids.DataDescID, ddi)
			ids.Scan = append(ids.Scan, scanNumbers[row])
			ids.State = append(ids.State, -1)
			ids.Intents = append(ids.Intents, intent)
			ids.StateIDs = append(ids.StateIDs, []int32{stateID})
			continue
		}
		if !containsInt32(ids.StateIDs[idx], stateID) {
			ids.StateIDs[idx] = append(ids.StateIDs[idx], stateID)
		}
	}
	return ids, nil
}

func containsInt32(values []int32, v int32) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

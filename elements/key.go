package elements

import (
	"fmt"
)

// ScanState carries the scan number and state (sub-scan) id distinguishing
// a partition under the scan-splitting schemes. A value of -1 means the
// component does not participate in the key.
type ScanState struct {
	Scan  int32
	State int32
}

// PartitionKey is the stable composite key a partition is stored under.
// Components not used by the active scheme hold their zero sentinel
// (-1 for ids, "" for the intent) so that keys remain comparable map keys
// across schemes.
type PartitionKey struct {
	SpwID      int32
	PolSetupID int32
	Intent     string
	Scan       int32
	State      int32
}

func (obj PartitionKey) String() string {
	s := fmt.Sprintf("spw=%d/pol=%d", obj.SpwID, obj.PolSetupID)
	if obj.Intent != "" {
		s += fmt.Sprintf("/intent=%s", obj.Intent)
	}
	if obj.Scan >= 0 {
		s += fmt.Sprintf("/scan=%d", obj.Scan)
	}
	if obj.State >= 0 {
		s += fmt.Sprintf("/state=%d", obj.State)
	}
	return s
}

// MakePartitionKey derives the composite key for a partition. It is a pure
// function of its arguments: identical inputs always produce an identical
// key. The intent is required for SchemeByIntent; the scan state is
// required for SchemeByScan and SchemeByScanSubscan, with the state id
// ignored for SchemeByScan.
func MakePartitionKey(
	spwID int32,
	polSetupID int32,
	scheme PartitionScheme,
	intent string,
	scanState *ScanState,
) (PartitionKey, error) {
	key := PartitionKey{
		SpwID:      spwID,
		PolSetupID: polSetupID,
		Scan:       -1,
		State:      -1,
	}

	switch scheme {
	case SchemeByConfiguration:
		return key, nil
	case SchemeByIntent:
		if intent == "" {
			return PartitionKey{}, fmt.Errorf("%w| scheme %s requires an intent", ErrConfiguration, scheme)
		}
		key.Intent = intent
		return key, nil
	case SchemeByScan:
		if scanState == nil {
			return PartitionKey{}, fmt.Errorf("%w| scheme %s requires a scan state", ErrConfiguration, scheme)
		}
		key.Scan = scanState.Scan
		return key, nil
	case SchemeByScanSubscan:
		if scanState == nil {
			return PartitionKey{}, fmt.Errorf("%w| scheme %s requires a scan state", ErrConfiguration, scheme)
		}
		key.Scan = scanState.Scan
		key.State = scanState.State
		return key, nil
	default:
		return PartitionKey{}, fmt.Errorf("%w| unknown partition scheme %q", ErrConfiguration, string(scheme))
	}
}

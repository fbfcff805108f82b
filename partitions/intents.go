package partitions

import (
	"strings"

	"github.com/astrovis/vispart/elements"
)

// SplitIntents parses a comma-separated compound intent string into a
// two-level scan-intent -> sub-scan-intent mapping. The sub-scan
// separator is "#", falling back to "." when no "#" appears anywhere in
// the string. A string carrying neither separator is kept verbatim in
// Raw: it already represents a single flat intent with no sub-scan
// structure. Duplicates and insertion order are preserved.
func SplitIntents(intents string) elements.ScanIntents {
	subSep := "#"
	if !strings.Contains(intents, subSep) {
		subSep = "."
		if !strings.Contains(intents, subSep) {
			return elements.ScanIntents{Raw: intents}
		}
	}

	result := elements.ScanIntents{
		Subscans: make(map[string][]string),
	}
	for _, item := range strings.Split(intents, ",") {
		parts := strings.SplitN(item, subSep, 2)
		scan := parts[0]
		subscan := ""
		if len(parts) == 2 {
			subscan = parts[1]
		}
		if _, ok := result.Subscans[scan]; !ok {
			result.Order = append(result.Order, scan)
		}
		result.Subscans[scan] = append(result.Subscans[scan], subscan)
	}
	return result
}

// Package region locates sub-sequences of lines with two-predicate scans.
//
// The scans are used to find docstring-shaped or signature-shaped regions
// inside a group of lines without parsing the language
package region

// Predicate tests a single line
type Predicate func(line string) bool

// PairMatch scans adjacent pairs (i, i+1). It reports i when first and second
// both hold on line i, otherwise i+1 when first holds on line i and second on
// line i+1. The final line is only ever examined as the second of a pair, so
// sequences shorter than two lines never match
func PairMatch(lines []string, first, second Predicate) (bool, int) {
	for i := 0; i+1 < len(lines); i++ {
		if !first(lines[i]) {
			continue
		}
		if second(lines[i]) {
			return true, i
		}
		if second(lines[i+1]) {
			return true, i + 1
		}
	}
	return false, 0
}

// ContinueMatch counts lines on which first holds. When second holds on a
// line it reports that index if exactly one first-event was counted since the
// last reset; any other count, zero included, resets the counter
func ContinueMatch(lines []string, first, second Predicate) (bool, int) {
	count := 0
	for i, line := range lines {
		if first(line) {
			count++
		}
		if second(line) {
			if count == 1 {
				return true, i
			}
			count = 0
		}
	}
	return false, 0
}

// Extract collects lines from the first one satisfying start (the entry line)
// up to and including the next line, other than the entry line, that
// satisfies finish. It returns the region and the index of its last line, or
// len(lines) when collection runs to the end of the input
func Extract(lines []string, start, finish Predicate) ([]string, int) {
	var region []string
	entered := false

	for i, line := range lines {
		isEntry := false
		if !entered && start(line) {
			entered = true
			isEntry = true
		}
		if !entered {
			continue
		}

		region = append(region, line)
		if !isEntry && finish(line) {
			return region, i
		}
	}
	return region, len(lines)
}

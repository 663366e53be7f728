package cycles

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

var fileNumberPattern = regexp.MustCompile(`\((\d+)\)`)

// FileNumber extracts the integer from the last "(N)" group of a file's base
// name, e.g. "cell7 charge (12).txt" -> 12. Names without one sort as 0.
func FileNumber(path string) int {
	matches := fileNumberPattern.FindAllStringSubmatch(filepath.Base(path), -1)
	if len(matches) == 0 {
		return 0
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0
	}
	return n
}

// Sort returns recs in processing order: by file number, then recordings whose
// trend matches the preferred type (charge when chargeFirst) ahead of the rest.
// Ties keep their input order. recs itself is not modified.
func Sort(recs []*novaexport.Recording, chargeFirst bool) []*novaexport.Recording {
	type keyed struct {
		rec    *novaexport.Recording
		number int
		rank   int
	}

	items := make([]keyed, len(recs))
	for i, rec := range recs {
		rank := 1
		if (Trend(rec.Potential) > 0) == chargeFirst {
			rank = 0
		}
		items[i] = keyed{rec: rec, number: FileNumber(rec.Path), rank: rank}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].number != items[j].number {
			return items[i].number < items[j].number
		}
		return items[i].rank < items[j].rank
	})

	out := make([]*novaexport.Recording, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

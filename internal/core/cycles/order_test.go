package cycles

import (
	"testing"

	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
	"github.com/stretchr/testify/assert"
)

func names(recs []*novaexport.Recording) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestFileNumber(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/data/cell7 charge (12).txt", 12},
		{"discharge (3).txt", 3},
		{"no number.txt", 0},
		{"run (2) repeat (5).txt", 5},
		{"/data/(9)/plain.txt", 0},
		{"cell (abc).txt", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FileNumber(tt.path))
		})
	}
}

func TestSort(t *testing.T) {
	recs := []*novaexport.Recording{
		recording("discharge (2).txt", []float64{0, 1, 2}, falling),
		recording("discharge (1).txt", []float64{0, 1, 2}, falling),
		recording("charge (2).txt", []float64{0, 1, 2}, rising),
		recording("charge (1).txt", []float64{0, 1, 2}, rising),
		recording("rest.txt", []float64{0, 1, 2}, []float64{3.0, 3.0, 3.0}),
	}

	chargeFirst := Sort(recs, true)
	assert.Equal(t, []string{
		"rest.txt",
		"charge (1).txt", "discharge (1).txt",
		"charge (2).txt", "discharge (2).txt",
	}, names(chargeFirst))

	dischargeFirst := Sort(recs, false)
	assert.Equal(t, []string{
		"rest.txt",
		"discharge (1).txt", "charge (1).txt",
		"discharge (2).txt", "charge (2).txt",
	}, names(dischargeFirst))

	// input untouched
	assert.Equal(t, "discharge (2).txt", recs[0].Name)
}

func TestSort_DrivesCycleNumbers(t *testing.T) {
	recs := []*novaexport.Recording{
		recording("d (2).txt", []float64{0, 1, 2}, falling),
		recording("c (2).txt", []float64{0, 1, 2}, rising),
		recording("d (1).txt", []float64{0, 1, 2}, falling),
		recording("c (1).txt", []float64{0, 1, 2}, rising),
	}

	res := Derive(Sort(recs, true), models.DefaultParams())
	assert.Equal(t, []int{1, 1, 2, 2}, cycleNumbers(res))

	res = Derive(Sort(recs, false), models.DefaultParams())
	assert.Equal(t, []int{1, 2, 2, 3}, cycleNumbers(res))
}

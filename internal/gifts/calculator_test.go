package gifts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeeded(t *testing.T) {
	tests := []struct {
		name          string
		target, rival int
		want          int
	}{
		{"tie", 500, 500, 0},
		{"tie at zero", 0, 0, 0},
		{"behind", 100, 250, 151},
		{"behind by one", 99, 100, 2},
		{"ahead", 300, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Needed(tt.target, tt.rival))
		})
	}
}

func TestCalculate_Tie(t *testing.T) {
	res := Calculate(1000, 1000)
	assert.Equal(t, 0, res.Needed)
	assert.Equal(t, StatusTie, res.Status)
	for _, l := range append(append(res.Large, res.Small...), res.Special...) {
		assert.Zero(t, l.Count, l.Label)
	}
}

func TestCalculate_Behind(t *testing.T) {
	res := Calculate(1000, 30999)
	require.Equal(t, 30000, res.Needed)
	assert.Equal(t, -29999, res.Diff)
	assert.Equal(t, StatusBehind, res.Status)

	require.Len(t, res.Large, 6)
	require.Len(t, res.Small, 10)
	require.Len(t, res.Special, 4)

	assert.Equal(t, "500G", res.Large[0].Label)
	assert.InDelta(t, 20.0, res.Large[0].Count, 1e-9)    // 30000 / 1500
	assert.InDelta(t, 0.1, res.Large[5].Count, 1e-9)     // 30000 / 300000
	assert.InDelta(t, 12000.0, res.Small[0].Count, 1e-9) // 30000 / 2.5
	assert.InDelta(t, 136.36, res.Small[7].Count, 1e-9)  // 30000 / 220
	assert.InDelta(t, 120.0, res.Special[0].Count, 1e-9) // 30000 / 250
	assert.InDelta(t, 10.0, res.Special[1].Count, 1e-9)  // 30000 / 3000
	assert.InDelta(t, 8.0, res.Special[2].Count, 1e-9)   // 30000 / 3750
	assert.InDelta(t, 4.0, res.Special[3].Count, 1e-9)   // 30000 / 7500
}

func TestCalculate_CountsMatchDenominations(t *testing.T) {
	res := Calculate(12, 4567)
	needed := float64(res.Needed)
	for i, d := range largeTier {
		assert.InDelta(t, needed/(float64(d)*3), res.Large[i].Count, 0.005)
	}
	for i, d := range smallTier {
		assert.InDelta(t, needed/(float64(d)*2.5), res.Small[i].Count, 0.005)
	}
}

func TestCalculate_Lead(t *testing.T) {
	res := Calculate(5000, 100)
	assert.Equal(t, 0, res.Needed)
	assert.Equal(t, 4900, res.Diff)
	assert.Equal(t, StatusLead, res.Status)
}

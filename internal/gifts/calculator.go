package gifts

import (
	"fmt"
	"math"
)

// Point-to-count multipliers of the two paid gift tiers and the rainbow bonus.
const (
	largeMultiplier = 3.0
	smallMultiplier = 2.5
	rainbowBonus    = 1.2
)

var (
	largeTier = []int{500, 1000, 3000, 10000, 20000, 100000}
	smallTier = []int{1, 2, 3, 5, 8, 10, 50, 88, 100, 200}
)

type special struct {
	label string
	value float64
}

var specials = []special{
	{"rainbow star 100pt", 100 * smallMultiplier},
	{"rainbow star 100pt x10", 100 * 10 * rainbowBonus * smallMultiplier},
	{"big rainbow star 1250pt", 1250 * rainbowBonus * smallMultiplier},
	{"rainbow star meteor 2500pt", 2500 * rainbowBonus * smallMultiplier},
}

type Status string

const (
	StatusLead   Status = "lead"
	StatusBehind Status = "behind"
	StatusTie    Status = "tie"
)

// Line is the number of one gift needed to close the gap.
type Line struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count float64 `json:"count"`
}

type Result struct {
	TargetPoint int    `json:"target_point"`
	RivalPoint  int    `json:"rival_point"`
	Diff        int    `json:"diff"`
	Status      Status `json:"status"`
	Needed      int    `json:"needed"`
	Large       []Line `json:"large"`
	Small       []Line `json:"small"`
	Special     []Line `json:"special"`
}

// Needed returns the points target must gain to pass rival; 0 on a tie or when already ahead.
func Needed(target, rival int) int {
	if target == rival {
		return 0
	}
	return max(0, rival-target+1)
}

func Calculate(target, rival int) Result {
	needed := Needed(target, rival)
	diff := target - rival

	res := Result{
		TargetPoint: target,
		RivalPoint:  rival,
		Diff:        diff,
		Needed:      needed,
		Large:       make([]Line, 0, len(largeTier)),
		Small:       make([]Line, 0, len(smallTier)),
		Special:     make([]Line, 0, len(specials)),
	}
	switch {
	case diff > 0:
		res.Status = StatusLead
	case diff < 0:
		res.Status = StatusBehind
	default:
		res.Status = StatusTie
	}

	for _, d := range largeTier {
		value := float64(d) * largeMultiplier
		res.Large = append(res.Large, Line{Label: fmt.Sprintf("%dG", d), Value: value, Count: count(needed, value)})
	}
	for _, d := range smallTier {
		value := float64(d) * smallMultiplier
		res.Small = append(res.Small, Line{Label: fmt.Sprintf("%dG", d), Value: value, Count: count(needed, value)})
	}
	for _, s := range specials {
		res.Special = append(res.Special, Line{Label: s.label, Value: s.value, Count: count(needed, s.value)})
	}
	return res
}

func count(needed int, value float64) float64 {
	return math.Round(float64(needed)/value*100) / 100
}

// Package risk implements the risk classification and multi-source geospatial
// sampling engine: it discovers which named data layers are current on the
// upstream WMS/WFS services, samples a coordinate against them, reconciles the
// inconsistent property schemas they return, and derives an ordered risk level
// from the raw readings.
package risk

// Level is the closed risk taxonomy. Levels are totally ordered
// (unavailable < low < medium < high) so that worst-case-wins aggregation is
// a plain maximum.
type Level string

const (
	LevelUnavailable Level = "unavailable"
	LevelLow         Level = "low"
	LevelMedium      Level = "medium"
	LevelHigh        Level = "high"
)

// rank maps a level to its position in the severity order.
func (l Level) rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// Outranks reports whether l is strictly more severe than other.
func (l Level) Outranks(other Level) bool {
	return l.rank() > other.rank()
}

// MaxLevel returns the most severe of the given levels, or LevelUnavailable
// when none are given.
func MaxLevel(levels ...Level) Level {
	max := LevelUnavailable
	for _, l := range levels {
		if l.Outranks(max) {
			max = l
		}
	}
	return max
}

// Classify maps a numeric reading onto the three-band taxonomy using two
// inclusive upper cutoffs: value <= lowMax is low, value <= mediumMax is
// medium, anything above is high. Absence of data is handled by callers
// before this point; Classify never returns LevelUnavailable.
func Classify(value, lowMax, mediumMax float64) Level {
	switch {
	case value <= lowMax:
		return LevelLow
	case value <= mediumMax:
		return LevelMedium
	default:
		return LevelHigh
	}
}

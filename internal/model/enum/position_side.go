package enum

// PositionSide is the tracked per-symbol position memory of a strategy.
type PositionSide uint8

const (
	PositionNone PositionSide = iota
	PositionLong
	PositionShort
)

func (p PositionSide) String() string {
	switch p {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "none"
	}
}

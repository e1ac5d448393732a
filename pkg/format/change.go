package format

// ChangeClass is the semantic styling category of a signed change.
type ChangeClass int

const (
	Neutral ChangeClass = iota
	Positive
	Negative
)

func (c ChangeClass) String() string {
	switch c {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

func classify(value float64) ChangeClass {
	if value > 0 {
		return Positive
	}
	if value < 0 {
		return Negative
	}
	// Zero and NaN
	return Neutral
}

// ChangeColorClass picks the foreground category for a change value.
func ChangeColorClass(value float64) ChangeClass {
	return classify(value)
}

// ChangeBackgroundClass picks the badge/background category for a change value.
// It uses the same thresholds as ChangeColorClass.
func ChangeBackgroundClass(value float64) ChangeClass {
	return classify(value)
}

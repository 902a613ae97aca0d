package summary

// Mood is a one-line reading of income against expenses
type Mood string

const (
	MoodAwesome   Mood = "awesome"
	MoodSaving    Mood = "saving"
	MoodBreakEven Mood = "breaking_even"
	MoodCareful   Mood = "budget_carefully"
)

// awesomeThreshold is the net amount above which saving counts as awesome
const awesomeThreshold = 5000

// MoodOf grades income - expenses
func MoodOf(income, expenses float64) Mood {
	net := income - expenses
	switch {
	case net > awesomeThreshold:
		return MoodAwesome
	case net > 0:
		return MoodSaving
	case net == 0:
		return MoodBreakEven
	}
	return MoodCareful
}

// Message returns the text shown for the mood
func (m Mood) Message() string {
	switch m {
	case MoodAwesome:
		return "Awesome financial health!"
	case MoodSaving:
		return "Good job saving!"
	case MoodBreakEven:
		return "Breaking even"
	}
	return "Time to budget carefully!"
}

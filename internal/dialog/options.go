package dialog

// MaxOptions is the number of buttons a response card can display.
const MaxOptions = 5

// ToOptions turns candidates into buttons whose label is the value itself.
// Candidates past MaxOptions are dropped.
func ToOptions(candidates []string) []Option {
	n := len(candidates)
	if n > MaxOptions {
		n = MaxOptions
	}

	options := make([]Option, 0, n)
	for _, c := range candidates[:n] {
		options = append(options, Option{Text: c, Value: c})
	}
	return options
}

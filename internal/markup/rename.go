package markup

import (
	"fmt"
	"strings"
)

// RenameRule is one ordered literal substitution, typically a CSS
// class migration like "nav__item" to "ul__item".
type RenameRule struct {
	From string
	To   string
}

// ParseRenameRule parses the "old=new" CLI form.
func ParseRenameRule(s string) (RenameRule, error) {
	from, to, ok := strings.Cut(s, "=")
	if !ok || from == "" || to == "" {
		return RenameRule{}, fmt.Errorf("invalid rename rule %q (want old=new)", s)
	}
	return RenameRule{From: from, To: to}, nil
}

// RenameResult reports how often each rule fired.
type RenameResult struct {
	Text string
	Hits []int // parallel to the rules slice
}

// RenameClasses applies the rules in order. Later rules see the output
// of earlier ones, so migrations can be chained the way the original
// class sweeps were written.
func RenameClasses(text string, rules []RenameRule) RenameResult {
	hits := make([]int, len(rules))
	for i, rule := range rules {
		hits[i] = strings.Count(text, rule.From)
		if hits[i] > 0 {
			text = strings.ReplaceAll(text, rule.From, rule.To)
		}
	}
	return RenameResult{Text: text, Hits: hits}
}

// Package classifier labels health questions with a fixed set of categories.
package classifier

import "strings"

const (
	Exercise      = "Exercise"
	Diet          = "Diet"
	GeneralHealth = "General health"
	Sleep         = "Sleep"
	MentalHealth  = "Mental Health"
	Nutrition     = "Nutrition"
	Drugs         = "Drugs"
)

type rule struct {
	category string
	keywords []string
}

// Rules are checked in order; the first match wins.
var rules = []rule{
	{Exercise, []string{"exercise"}},
	{Diet, []string{"diet", "food"}},
	{Sleep, []string{"sleep"}},
	{MentalHealth, []string{"mind", "mental health"}},
	{Nutrition, []string{"nutrition"}},
	{Drugs, []string{"medicine", "drugs"}},
}

// Categories returns every label Classify can produce.
func Categories() []string {
	return []string{Exercise, Diet, GeneralHealth, Sleep, MentalHealth, Nutrition, Drugs}
}

// Keyword is a rule-based categorizer. The zero value is ready to use.
type Keyword struct{}

// Classify returns the category of question, GeneralHealth when no rule matches.
func (Keyword) Classify(question string) string {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.category
			}
		}
	}
	return GeneralHealth
}

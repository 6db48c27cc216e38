package session

import (
	"sort"
	"time"

	"github.com/abhisek/amcprep/internal/store"
)

// Uncategorized labels problems without a category.
const Uncategorized = "Uncategorized"

// Summary holds the data displayed on the summary screen.
type Summary struct {
	Duration       time.Duration
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	AverageSeconds float64
	Categories     []CategoryResult
	Results        []Result
}

// CategoryResult tracks performance within one topic.
type CategoryResult struct {
	Category  string
	Attempted int
	Correct   int
}

// Accuracy returns Correct / Attempted, or 0 with no attempts.
func (c CategoryResult) Accuracy() float64 {
	if c.Attempted == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempted)
}

// BuildSummary creates a Summary from the session state.
func BuildSummary(state *State) *Summary {
	s := &Summary{
		Duration:       state.Elapsed,
		TotalQuestions: len(state.Results),
		Results:        append([]Result(nil), state.Results...),
	}

	byCat := make(map[string]*CategoryResult)
	var seconds int
	for _, r := range state.Results {
		if r.Correct {
			s.TotalCorrect++
		}
		seconds += r.AnswerTime
		tally(byCat, r.Problem.Category, r.Correct)
	}

	if s.TotalQuestions > 0 {
		s.Accuracy = float64(s.TotalCorrect) / float64(s.TotalQuestions)
		s.AverageSeconds = float64(seconds) / float64(s.TotalQuestions)
	}
	s.Categories = sortedCategories(byCat)
	return s
}

// CategoryAccuracy groups saved attempts by category.
func CategoryAccuracy(records []store.ProgressRecord) []CategoryResult {
	byCat := make(map[string]*CategoryResult)
	for _, rec := range records {
		tally(byCat, rec.Category, rec.Correct())
	}
	return sortedCategories(byCat)
}

func tally(m map[string]*CategoryResult, category string, correct bool) {
	if category == "" {
		category = Uncategorized
	}
	c := m[category]
	if c == nil {
		c = &CategoryResult{Category: category}
		m[category] = c
	}
	c.Attempted++
	if correct {
		c.Correct++
	}
}

func sortedCategories(m map[string]*CategoryResult) []CategoryResult {
	out := make([]CategoryResult, 0, len(m))
	for _, c := range m {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

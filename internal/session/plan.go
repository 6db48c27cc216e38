package session

import "github.com/abhisek/amcprep/internal/problems"

// DefaultQuestions is the number of problems served in a session.
const DefaultQuestions = 10

// Plan is the ordered list of problems for a session.
type Plan struct {
	Level    int
	Problems []problems.Problem
}

// Len returns the number of planned problems.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Problems)
}

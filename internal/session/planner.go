package session

import (
	"errors"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/store"
)

// ErrNoProblems is returned when the level has no problems in the bank.
var ErrNoProblems = errors.New("no problems available for this level")

// Planner builds a session plan from the learner's history.
type Planner interface {
	// BuildPlan selects up to n problems for the given level.
	BuildPlan(bank *problems.Bank, lvl int, progress []store.ProgressRecord, n int) (*Plan, error)
}

// DefaultPlanner serves unattempted problems first, then the ones the
// learner has not seen for the longest time.
type DefaultPlanner struct {
	Levels level.Config
	Rand   *rand.Rand
}

// NewPlanner creates a DefaultPlanner with a randomly seeded source.
func NewPlanner(cfg level.Config) *DefaultPlanner {
	return &DefaultPlanner{
		Levels: cfg,
		Rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// BuildPlan picks up to n problems from the level's question range.
// Problems with equal history are shuffled.
func (p *DefaultPlanner) BuildPlan(bank *problems.Bank, lvl int, progress []store.ProgressRecord, n int) (*Plan, error) {
	if n <= 0 {
		n = DefaultQuestions
	}

	candidates := bank.ForLevel(lvl, p.Levels)
	if len(candidates) == 0 {
		return nil, ErrNoProblems
	}

	lastSeen := lastAttempts(progress)

	p.Rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		ti, seenI := lastSeen[problemKey{candidates[i].Folder, candidates[i].Number}]
		tj, seenJ := lastSeen[problemKey{candidates[j].Folder, candidates[j].Number}]
		if seenI != seenJ {
			return !seenI
		}
		return ti.Before(tj)
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return &Plan{Level: lvl, Problems: candidates}, nil
}

type problemKey struct {
	folder string
	number int
}

// lastAttempts maps each attempted problem to its most recent attempt.
func lastAttempts(progress []store.ProgressRecord) map[problemKey]time.Time {
	out := make(map[problemKey]time.Time, len(progress))
	for _, rec := range progress {
		k := problemKey{rec.FolderName, rec.QuestionNumber}
		if t, ok := out[k]; !ok || rec.AttemptDate.After(t) {
			out[k] = rec.AttemptDate
		}
	}
	return out
}

// Package level computes a learner's working level from their answer
// history. Each level covers a band of question numbers; a level is passed
// when enough of the most recent attempts in its band are correct.
package level

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/abhisek/amcprep/internal/store"
)

// Range is the band of question numbers, inclusive, belonging to a level.
type Range struct {
	Level int
	First int
	Last  int
}

// Contains reports whether question number q lies in the range.
func (r Range) Contains(q int) bool {
	return q >= r.First && q <= r.Last
}

// Config holds the level rules.
type Config struct {
	Ranges []Range

	// QuestionsForAssessment is the number of most recent attempts in a
	// level's band that are scored. Fewer attempts than this and the level
	// cannot be passed yet.
	QuestionsForAssessment int

	// CorrectToLevelUp is the threshold the correct count must exceed.
	CorrectToLevelUp int
}

// DefaultConfig returns five levels of five questions each, scored over the
// last 5 attempts with at least 4 correct needed to pass.
func DefaultConfig() Config {
	return Config{
		Ranges: []Range{
			{Level: 1, First: 1, Last: 5},
			{Level: 2, First: 6, Last: 10},
			{Level: 3, First: 11, Last: 15},
			{Level: 4, First: 16, Last: 20},
			{Level: 5, First: 21, Last: 25},
		},
		QuestionsForAssessment: 5,
		CorrectToLevelUp:       3,
	}
}

// ConfigFromEnv applies AMCPREP_LEVEL_WINDOW and AMCPREP_LEVEL_THRESHOLD
// on top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("AMCPREP_LEVEL_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("AMCPREP_LEVEL_WINDOW must be a positive integer, got %q", v)
		}
		cfg.QuestionsForAssessment = n
	}
	if v := os.Getenv("AMCPREP_LEVEL_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("AMCPREP_LEVEL_THRESHOLD must be a non-negative integer, got %q", v)
		}
		cfg.CorrectToLevelUp = n
	}
	return cfg, nil
}

// sorted returns the ranges in ascending level order.
func (c Config) sorted() []Range {
	rs := slices.Clone(c.Ranges)
	slices.SortFunc(rs, func(a, b Range) int { return a.Level - b.Level })
	return rs
}

// MaxLevel returns the highest configured level, or 1 with no ranges.
func (c Config) MaxLevel() int {
	max := 1
	for _, r := range c.Ranges {
		if r.Level > max {
			max = r.Level
		}
	}
	return max
}

// RangeFor returns the range of the given level.
func (c Config) RangeFor(level int) (Range, bool) {
	for _, r := range c.Ranges {
		if r.Level == level {
			return r, true
		}
	}
	return Range{}, false
}

// LevelOf returns the level whose band contains question q, or 0.
func (c Config) LevelOf(q int) int {
	for _, r := range c.Ranges {
		if r.Contains(q) {
			return r.Level
		}
	}
	return 0
}

// Status is the assessment outcome of a single level.
type Status struct {
	Level    int
	Attempts int // attempts in the level's band
	Scored   int // attempts considered, at most QuestionsForAssessment
	Correct  int // correct among the scored attempts
	Passed   bool
}

// Assess scores levels in ascending order and stops at the first level
// that is not passed. attempts must be most recent first.
func Assess(attempts []store.ProgressRecord, cfg Config) []Status {
	var out []Status
	for _, r := range cfg.sorted() {
		var inBand []store.ProgressRecord
		for _, a := range attempts {
			if r.Contains(a.QuestionNumber) {
				inBand = append(inBand, a)
			}
		}

		st := Status{Level: r.Level, Attempts: len(inBand)}
		if len(inBand) < cfg.QuestionsForAssessment {
			out = append(out, st)
			break
		}

		window := inBand[:cfg.QuestionsForAssessment]
		st.Scored = len(window)
		for _, a := range window {
			if a.Correct() {
				st.Correct++
			}
		}
		st.Passed = st.Correct > cfg.CorrectToLevelUp
		out = append(out, st)
		if !st.Passed {
			break
		}
	}
	return out
}

// Calculate returns the working level: one above the highest passed level,
// capped at the maximum level. attempts must be most recent first.
func Calculate(attempts []store.ProgressRecord, cfg Config) int {
	if len(cfg.Ranges) == 0 {
		return 1
	}

	highest := 0
	for _, st := range Assess(attempts, cfg) {
		if st.Passed {
			highest = st.Level
		}
	}
	return min(highest+1, cfg.MaxLevel())
}

// Service computes levels from stored progress.
type Service struct {
	progress store.ProgressRepo
	cfg      Config
}

// NewService creates a level service.
func NewService(progress store.ProgressRepo, cfg Config) *Service {
	return &Service{progress: progress, cfg: cfg}
}

// Config returns the level rules in use.
func (s *Service) Config() Config {
	return s.cfg
}

// CurrentLevel loads the user's attempts and computes their level.
func (s *Service) CurrentLevel(ctx context.Context, username string) (int, error) {
	attempts, err := s.progress.UserProgress(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	return Calculate(attempts, s.cfg), nil
}

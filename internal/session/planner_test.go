package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/store"
)

// testBank writes a bank with one contest holding questions 1..n.
func testBank(t *testing.T, n int) *problems.Bank {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "AMC 8 2022")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var key strings.Builder
	key.WriteString("contest: AMC 8 2022\nanswers:\n")
	for i := 1; i <= n; i++ {
		cat := "Algebra"
		if i%2 == 0 {
			cat = "Geometry"
		}
		fmt.Fprintf(&key, "  %d: {answer: %s, category: %s}\n", i, problems.Choices[i%5], cat)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.png", i)), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, problems.AnswerKeyFile), []byte(key.String()), 0o644))

	bank, err := problems.Load(filepath.Dir(dir))
	require.NoError(t, err)
	return bank
}

func testPlanner() *DefaultPlanner {
	return &DefaultPlanner{
		Levels: level.DefaultConfig(),
		Rand:   rand.New(rand.NewPCG(1, 2)),
	}
}

func attempt(number int, at time.Time) store.ProgressRecord {
	return store.ProgressRecord{
		FolderName:     "AMC 8 2022",
		QuestionNumber: number,
		AttemptDate:    at,
	}
}

func numbers(p *Plan) []int {
	var out []int
	for _, pr := range p.Problems {
		out = append(out, pr.Number)
	}
	return out
}

func TestBuildPlan_LevelRange(t *testing.T) {
	bank := testBank(t, 25)
	plan, err := testPlanner().BuildPlan(bank, 2, nil, 10)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Len() != 5 {
		t.Fatalf("Len = %d, want 5", plan.Len())
	}
	for _, n := range numbers(plan) {
		if n < 6 || n > 10 {
			t.Errorf("question %d outside level 2 range", n)
		}
	}
	if plan.Level != 2 {
		t.Errorf("Level = %d, want 2", plan.Level)
	}
}

func TestBuildPlan_UnattemptedFirst(t *testing.T) {
	bank := testBank(t, 5)
	now := time.Now()
	progress := []store.ProgressRecord{
		attempt(1, now.Add(-time.Hour)),
		attempt(2, now.Add(-3*time.Hour)),
		attempt(3, now.Add(-2*time.Hour)),
	}

	plan, err := testPlanner().BuildPlan(bank, 1, progress, 5)
	require.NoError(t, err)

	got := numbers(plan)
	require.Len(t, got, 5)
	first := map[int]bool{got[0]: true, got[1]: true}
	if !first[4] || !first[5] {
		t.Errorf("unattempted questions not first: %v", got)
	}
	// Least recently attempted next.
	if got[2] != 2 || got[3] != 3 || got[4] != 1 {
		t.Errorf("attempted order = %v, want [2 3 1]", got[2:])
	}
}

func TestBuildPlan_UsesLatestAttempt(t *testing.T) {
	bank := testBank(t, 2)
	now := time.Now()
	progress := []store.ProgressRecord{
		attempt(1, now.Add(-5*time.Hour)),
		attempt(1, now), // retried just now
		attempt(2, now.Add(-time.Hour)),
	}

	plan, err := testPlanner().BuildPlan(bank, 1, progress, 2)
	require.NoError(t, err)
	if got := numbers(plan); got[0] != 2 {
		t.Errorf("order = %v, want question 2 first", got)
	}
}

func TestBuildPlan_Limit(t *testing.T) {
	bank := testBank(t, 5)
	plan, err := testPlanner().BuildPlan(bank, 1, nil, 3)
	require.NoError(t, err)
	if plan.Len() != 3 {
		t.Errorf("Len = %d, want 3", plan.Len())
	}

	plan, err = testPlanner().BuildPlan(bank, 1, nil, 0)
	require.NoError(t, err)
	if plan.Len() != 5 {
		t.Errorf("default limit Len = %d, want 5", plan.Len())
	}
}

func TestBuildPlan_NoProblems(t *testing.T) {
	bank := testBank(t, 5)
	_, err := testPlanner().BuildPlan(bank, 3, nil, 10)
	if !errors.Is(err, ErrNoProblems) {
		t.Errorf("err = %v, want ErrNoProblems", err)
	}
	_, err = testPlanner().BuildPlan(bank, 9, nil, 10)
	if !errors.Is(err, ErrNoProblems) {
		t.Errorf("unknown level err = %v, want ErrNoProblems", err)
	}
}

func TestBuildPlan_ShufflesTies(t *testing.T) {
	bank := testBank(t, 5)
	seen := make(map[string]bool)
	for seed := uint64(0); seed < 20; seed++ {
		p := &DefaultPlanner{Levels: level.DefaultConfig(), Rand: rand.New(rand.NewPCG(seed, seed))}
		plan, err := p.BuildPlan(bank, 1, nil, 5)
		require.NoError(t, err)
		seen[fmt.Sprint(numbers(plan))] = true
	}
	if len(seen) < 2 {
		t.Error("expected different orders across seeds")
	}
}

package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/store"
)

type fakeRepo struct {
	records []store.ProgressRecord
	err     error
	user    string
}

func (f *fakeRepo) SaveProgress(context.Context, store.ProgressRecord) error { return nil }
func (f *fakeRepo) ResetProgress(context.Context, string) (int64, error)    { return 0, nil }
func (f *fakeRepo) UserProgress(_ context.Context, username string) ([]store.ProgressRecord, error) {
	f.user = username
	return f.records, f.err
}

func rec(session string, q int, choice string, at time.Time) store.ProgressRecord {
	return store.ProgressRecord{
		SessionID:      session,
		FolderName:     "AMC 8 2022",
		QuestionNumber: q,
		Category:       "Algebra",
		UserChoice:     choice,
		CorrectChoice:  "A",
		AnswerTime:     30,
		AttemptDate:    at,
	}
}

func testRecords() []store.ProgressRecord {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	return []store.ProgressRecord{
		rec("s2", 3, "A", now),
		rec("s2", 2, "B", now.Add(-time.Minute)),
		rec("s1", 1, "A", now.Add(-24*time.Hour)),
	}
}

func load(t *testing.T, s *ProgressScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestGroupSessions(t *testing.T) {
	rows := GroupSessions(testRecords())
	require.Len(t, rows, 2)
	assert.Equal(t, "s2", rows[0].SessionID)
	assert.Len(t, rows[0].Attempts, 2)
	assert.Equal(t, 1, rows[0].Correct)
	assert.Equal(t, 60, rows[0].Seconds)
	assert.Equal(t, "s1", rows[1].SessionID)
	assert.Equal(t, 1, rows[1].Correct)
}

func TestProgressScreen_Loads(t *testing.T) {
	repo := &fakeRepo{records: testRecords()}
	s := New(repo, level.DefaultConfig(), "alice")
	if !strings.Contains(s.View(100, 40), "Loading") {
		t.Error("expected loading view before data arrives")
	}

	load(t, s)
	assert.Equal(t, "alice", repo.user)

	view := s.View(100, 40)
	for _, want := range []string{"Level 1", "3 attempts", "2 correct", "Algebra", "Sessions"} {
		assert.Contains(t, view, want)
	}
	assert.Contains(t, view, "Answer 2 more level 1 problems")
}

func TestProgressScreen_Empty(t *testing.T) {
	s := New(&fakeRepo{}, level.DefaultConfig(), "alice")
	load(t, s)
	assert.Contains(t, s.View(80, 24), "No attempts yet")
}

func TestProgressScreen_Error(t *testing.T) {
	s := New(&fakeRepo{err: errors.New("db locked")}, level.DefaultConfig(), "alice")
	load(t, s)
	assert.Contains(t, s.View(80, 24), "db locked")
}

func TestProgressScreen_ExpandSession(t *testing.T) {
	s := New(&fakeRepo{records: testRecords()}, level.DefaultConfig(), "alice")
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected, "selection stops at the last session")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, s.expanded[1])
	assert.Contains(t, s.View(100, 40), "AMC 8 2022 #1")
}

func TestProgressScreen_Back(t *testing.T) {
	s := New(&fakeRepo{}, level.DefaultConfig(), "alice")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestNextLevelNote(t *testing.T) {
	cfg := level.DefaultConfig()
	now := time.Now()
	var records []store.ProgressRecord
	for i := range 5 {
		choice := "B"
		if i < 2 {
			choice = "A"
		}
		records = append(records, rec("s", i+1, choice, now.Add(-time.Duration(i)*time.Minute)))
	}

	s := New(&fakeRepo{records: records}, cfg, "alice")
	load(t, s)
	assert.Equal(t, 1, s.level)
	assert.Equal(t, "Get 4 of your last 5 level 1 problems right to move up (now 2).", s.nextLevelNote())
}

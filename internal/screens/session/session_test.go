package session

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screens/explanation"
	"github.com/abhisek/amcprep/internal/screens/summary"
	sess "github.com/abhisek/amcprep/internal/session"
	"github.com/abhisek/amcprep/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// writeBank creates a contest whose questions from..to all have answer B.
func writeBank(t *testing.T, from, to int) *problems.Bank {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "AMC 8 2022")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		img.Set(x, x, color.Black)
	}

	var key strings.Builder
	key.WriteString("contest: AMC 8 2022\nanswers:\n")
	for i := from; i <= to; i++ {
		fmt.Fprintf(&key, "  %d: {answer: B, category: Algebra}\n", i)
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, problems.AnswerKeyFile), []byte(key.String()), 0o644))

	bank, err := problems.Load(root)
	require.NoError(t, err)
	return bank
}

type fixture struct {
	screen *SessionScreen
	store  *store.Store
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithBank(t, writeBank(t, 1, 5))
}

func newFixtureWithBank(t *testing.T, bank *problems.Bank) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Users().AddUser(context.Background(), "alice", "hash"))

	logger, _ := test.NewNullLogger()
	f := &fixture{store: st, clock: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	f.screen = New(Deps{
		Bank:      bank,
		Planner:   &sess.DefaultPlanner{Levels: level.DefaultConfig(), Rand: rand.New(rand.NewPCG(1, 2))},
		Progress:  st.Progress(),
		Levels:    level.DefaultConfig(),
		Recorder:  sess.NewRecorder(st.Progress(), logger),
		Questions: 3,
		Log:       logger,
	}, "alice")
	f.screen.now = func() time.Time { return f.clock }
	return f
}

// start runs initialization and loads the first image.
func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.screen.Update(f.screen.Init()())
	require.NotNil(t, f.screen.state, "errMsg: %s", f.screen.errMsg)
	f.screen.Update(f.screen.loadImage()())
}

func TestSessionScreen_Title(t *testing.T) {
	f := newFixture(t)
	if f.screen.Title() != "Practice" {
		t.Errorf("Title = %q, want %q", f.screen.Title(), "Practice")
	}
}

func TestSessionScreen_View_Loading(t *testing.T) {
	f := newFixture(t)
	if !strings.Contains(f.screen.View(80, 24), "Preparing") {
		t.Error("expected loading view")
	}
}

func TestSessionScreen_NoBank(t *testing.T) {
	s := New(Deps{}, "alice")
	s.Update(s.Init()())
	if s.errMsg == "" {
		t.Fatal("expected an error without a problem bank")
	}
	_, cmd := s.Update(keyPress('x'))
	require.NotNil(t, cmd)
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("any key should go back from the error view")
	}
}

func TestSessionScreen_NoProblemsForLevel(t *testing.T) {
	// Level 1 covers questions 1-5.
	f := newFixtureWithBank(t, writeBank(t, 6, 10))
	f.screen.Update(f.screen.Init()())
	assert.Equal(t, "No problems are available for your level yet.", f.screen.errMsg)
}

func TestSessionScreen_AnswerAndSave(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	require.Equal(t, 3, f.screen.state.Plan.Len())

	f.clock = f.clock.Add(25 * time.Second)
	_, cmd := f.screen.Update(keyPress('b'))
	require.NotNil(t, cmd, "answer should be saved")
	assert.Equal(t, sess.PhaseFeedback, f.screen.state.Phase)
	assert.True(t, f.screen.state.LastResult().Correct)
	assert.Contains(t, f.screen.View(100, 40), "Correct!")

	f.screen.Update(cmd())
	assert.Empty(t, f.screen.saveErr)

	saved, err := f.store.Progress().UserProgress(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 25, saved[0].AnswerTime)
	assert.Equal(t, "B", saved[0].UserChoice)
	assert.Equal(t, f.screen.state.SessionID, saved[0].SessionID)
}

func TestSessionScreen_WrongAnswerFeedback(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.screen.Update(keyPress('d'))
	view := f.screen.View(100, 40)
	assert.Contains(t, view, "Not quite.")
	assert.Contains(t, view, "The answer is B.")
}

func TestSessionScreen_ArrowsAndEnter(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.screen.Update(specialKey(tea.KeyRight))
	f.screen.Update(specialKey(tea.KeyEnter))
	require.Equal(t, sess.PhaseFeedback, f.screen.state.Phase)
	assert.Equal(t, "B", f.screen.state.LastResult().Choice)
}

func TestSessionScreen_SaveFailure(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.screen.Update(keyPress('b'))
	f.screen.Update(answerSavedMsg{Err: fmt.Errorf("disk full")})
	assert.Contains(t, f.screen.View(100, 40), "could not be saved")
}

func TestSessionScreen_RunToSummary(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	var cmd tea.Cmd
	for i := range 3 {
		f.screen.Update(keyPress('b'))
		_, cmd = f.screen.Update(specialKey(tea.KeyEnter))
		if i < 2 {
			require.NotNil(t, cmd)
			f.screen.Update(cmd())
			assert.Equal(t, i+1, f.screen.state.Current)
			assert.Equal(t, sess.PhaseActive, f.screen.state.Phase)
		}
	}

	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok, "last problem should lead to the summary")
	_, ok = msg.Screen.(*summary.SummaryScreen)
	assert.True(t, ok)
	assert.Equal(t, sess.PhaseSummary, f.screen.state.Phase)
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.screen.Update(specialKey(tea.KeyEscape))
	if !f.screen.showingQuit {
		t.Fatal("expected quit confirmation dialog")
	}
	if !strings.Contains(f.screen.View(80, 24), "End session early?") {
		t.Error("expected the dialog to render")
	}

	f.screen.Update(keyPress('n'))
	if f.screen.showingQuit {
		t.Error("expected quit confirmation to be dismissed")
	}
}

func TestSessionScreen_QuitBeforeAnswering(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.screen.Update(specialKey(tea.KeyEscape))
	_, cmd := f.screen.Update(keyPress('y'))
	require.NotNil(t, cmd)
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("quitting with no answers should go straight back")
	}
}

func TestSessionScreen_QuitAfterAnswering(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.screen.Update(keyPress('b'))
	f.screen.Update(specialKey(tea.KeyEscape))
	_, cmd := f.screen.Update(keyPress('y'))
	require.NotNil(t, cmd)
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("quitting after answering should show the summary")
	}
}

func TestSessionScreen_Explain(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	// Before answering, e chooses answer E.
	f.screen.Update(keyPress('e'))
	require.Equal(t, sess.PhaseFeedback, f.screen.state.Phase)
	assert.Equal(t, "E", f.screen.state.LastResult().Choice)

	_, cmd := f.screen.Update(keyPress('e'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = msg.Screen.(*explanation.ExplanationScreen)
	assert.True(t, ok)
}

func TestSessionScreen_TimerTick(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.clock = f.clock.Add(90 * time.Second)
	_, cmd := f.screen.Update(timerTickMsg(f.clock))
	assert.NotNil(t, cmd, "ticks continue during the session")
	assert.Equal(t, 90*time.Second, f.screen.state.Elapsed)
	assert.Contains(t, f.screen.View(120, 40), "1:30")
}

func TestSessionScreen_ImageCache(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	first := f.screen.renderImage(40, 10)
	require.NotEmpty(t, first)
	assert.Equal(t, [2]int{40, 10}, f.screen.renderedFor)

	f.screen.image = nil // a cache hit must not touch the image
	assert.Equal(t, first, f.screen.renderImage(40, 10))
}

func TestSessionScreen_StaleImageIgnored(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.screen.Update(imageLoadedMsg{Index: 2, Err: fmt.Errorf("late")})
	assert.NoError(t, f.screen.imageErr)
}

func TestSessionScreen_KeyHints(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	if len(f.screen.KeyHints()) == 0 {
		t.Error("expected non-empty key hints")
	}
	f.screen.Update(keyPress('b'))
	hints := f.screen.KeyHints()
	found := false
	for _, h := range hints {
		if h.Description == "Explain" {
			found = true
		}
	}
	assert.True(t, found, "feedback hints should offer an explanation")
}

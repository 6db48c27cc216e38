package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/screens/notice"
	"github.com/abhisek/amcprep/internal/screens/progress"
	sessionscreen "github.com/abhisek/amcprep/internal/screens/session"
	"github.com/abhisek/amcprep/internal/store"
)

type fakeRepo struct {
	records []store.ProgressRecord
	err     error
	calls   int
}

func (f *fakeRepo) SaveProgress(context.Context, store.ProgressRecord) error { return nil }
func (f *fakeRepo) ResetProgress(context.Context, string) (int64, error)    { return 0, nil }
func (f *fakeRepo) UserProgress(context.Context, string) ([]store.ProgressRecord, error) {
	f.calls++
	return f.records, f.err
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "login" }
func (s *stubScreen) Title() string                           { return "Login" }

func newTestHome(repo *fakeRepo, bank *problems.Bank) *HomeScreen {
	cfg := level.DefaultConfig()
	return New(Deps{
		Session: sessionscreen.Deps{Bank: bank, Progress: repo, Levels: cfg},
		Levels:  level.NewService(repo, cfg),
		Logout:  func() screen.Screen { return &stubScreen{} },
	}, "alice")
}

func TestHomeLoadsStats(t *testing.T) {
	repo := &fakeRepo{records: []store.ProgressRecord{
		{QuestionNumber: 1, UserChoice: "A", CorrectChoice: "A"},
		{QuestionNumber: 2, UserChoice: "B", CorrectChoice: "A"},
	}}
	h := newTestHome(repo, nil)

	cmd := h.Init()
	if cmd == nil {
		t.Fatal("expected stats command")
	}
	_, next := h.Update(cmd())
	if h.attempts != 2 || h.correct != 1 || h.level != 1 {
		t.Errorf("stats = %d/%d level %d", h.correct, h.attempts, h.level)
	}
	if next == nil {
		t.Fatal("expected a UserMsg after loading")
	}
	um, ok := next().(screen.UserMsg)
	if !ok || um.Username != "alice" || um.Level != 1 {
		t.Errorf("got %#v", next())
	}

	view := h.View(120, 40)
	if !strings.Contains(view, "LEVEL 1") || !strings.Contains(view, "50% ACCURACY") {
		t.Error("view should show level and accuracy")
	}
}

func TestHomeFocusReloads(t *testing.T) {
	repo := &fakeRepo{}
	h := newTestHome(repo, nil)
	h.Update(h.Init()())
	h.Update(h.Focus()())
	if repo.calls != 2 {
		t.Errorf("UserProgress calls = %d, want 2", repo.calls)
	}
}

func TestHomeStatsError(t *testing.T) {
	h := newTestHome(&fakeRepo{err: errors.New("boom")}, nil)
	h.Update(h.Init()())
	if !strings.Contains(h.View(120, 40), "Could not load progress") {
		t.Error("expected the error to be shown")
	}
}

func TestHomePracticeWithoutBank(t *testing.T) {
	h := newTestHome(&fakeRepo{}, nil)
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'p', Text: "p"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*notice.NoticeScreen); !ok {
		t.Errorf("expected a notice, got %T", msg.Screen)
	}
}

func TestHomePractice(t *testing.T) {
	h := newTestHome(&fakeRepo{}, &problems.Bank{})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("expected the practice screen, got %T", msg.Screen)
	}
}

func TestHomeProgress(t *testing.T) {
	h := newTestHome(&fakeRepo{}, nil)
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*progress.ProgressScreen); !ok {
		t.Errorf("expected the progress screen, got %T", msg.Screen)
	}
}

func TestHomeLogout(t *testing.T) {
	h := newTestHome(&fakeRepo{}, nil)
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected a batch of two, got %#v", cmd())
	}
	if um, ok := batch[0]().(screen.UserMsg); !ok || um.Username != "" {
		t.Error("logout should clear the user")
	}
	reset, ok := batch[1]().(router.ResetScreenMsg)
	if !ok || reset.Screen.View(0, 0) != "login" {
		t.Error("logout should reset to the login screen")
	}
}

func TestHomeCompactView(t *testing.T) {
	h := newTestHome(&fakeRepo{}, nil)
	h.Update(h.Init()())
	if !strings.Contains(h.View(80, 16), "PRACTICE") {
		t.Error("compact view should still list the menu")
	}
}

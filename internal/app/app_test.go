package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/amcprep/internal/auth"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/screens/home"
	"github.com/abhisek/amcprep/internal/screens/login"
	"github.com/abhisek/amcprep/internal/store"
)

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, username, password string) (*store.User, error) {
	if password != "pw" {
		return nil, auth.ErrInvalidCredentials
	}
	return &store.User{Username: username}, nil
}
func (fakeAuth) Register(context.Context, string, string, string) error { return nil }
func (fakeAuth) RequiresInvite() bool                                   { return false }

func newTestModel() AppModel {
	logger, _ := test.NewNullLogger()
	return newAppModel(Options{Auth: fakeAuth{}, Log: logger})
}

func TestStartsAtLogin(t *testing.T) {
	m := newTestModel()
	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Fatalf("active = %T, want login", m.router.Active())
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestEscIsLeftToScreens(t *testing.T) {
	m := newTestModel()
	m.router.Push(home.New(home.Deps{}, "alice"))
	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		if _, ok := cmd().(router.PopScreenMsg); ok {
			t.Error("the app must not pop on esc by itself")
		}
	}
	if updated.(AppModel).router.Depth() != 2 {
		t.Error("stack should be unchanged")
	}
}

func TestUserMsgUpdatesHeader(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	updated, _ = updated.Update(screen.UserMsg{Username: "alice", Level: 3})
	am := updated.(AppModel)
	if am.username != "alice" || am.level != 3 {
		t.Fatalf("header state = %q %d", am.username, am.level)
	}
	if !strings.Contains(am.render(), "Level 3") {
		t.Error("header should show the level")
	}

	updated, _ = am.Update(screen.UserMsg{})
	if updated.(AppModel).username != "" {
		t.Error("empty UserMsg should clear the header")
	}
}

func TestLoginLeadsHome(t *testing.T) {
	m := newTestModel()
	m.Init()

	var s screen.Screen = m.router.Active()
	if _, ok := s.(*login.LoginScreen); !ok {
		t.Fatalf("active = %T, want login", s)
	}
	for _, r := range "alice" {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	for _, r := range "pw" {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a filled form should start the login")
	}
	_, cmd = s.Update(cmd())
	if cmd == nil {
		t.Fatal("a successful login should navigate")
	}

	updated, _ := m.Update(cmd())
	am := updated.(AppModel)
	if _, ok := am.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home", am.router.Active())
	}
}

func TestTooSmall(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(AppModel).render(), "Terminal too small") {
		t.Error("expected the size warning")
	}
}

package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/amcprep/internal/auth"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/store"
	"github.com/abhisek/amcprep/internal/ui/components"
	"github.com/abhisek/amcprep/internal/ui/layout"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

// Authenticator is the part of auth.Service the screen needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*store.User, error)
	Register(ctx context.Context, username, password, inviteCode string) error
	RequiresInvite() bool
}

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

const (
	fieldUsername = iota
	fieldPassword
	fieldInvite
)

// authResultMsg carries the outcome of a login or registration.
type authResultMsg struct {
	Mode     mode
	Username string
	Err      error
}

// LoginScreen signs a learner in or registers a new account.
type LoginScreen struct {
	auth   Authenticator
	next   func(username string) screen.Screen
	mode   mode
	inputs []components.TextInput
	submit components.Button
	focus  int
	busy   bool
	errMsg string
	info   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown after a
// successful login.
func New(a Authenticator, next func(username string) screen.Screen) *LoginScreen {
	inputs := []components.TextInput{
		components.NewTextInput("Username", "your name", 32),
		components.NewPasswordInput("Password", auth.MaxPasswordBytes),
		components.NewTextInput("Invite code", "ABCD2345", auth.InviteCodeLength),
	}
	s := &LoginScreen{
		auth:   a,
		next:   next,
		inputs: inputs,
	}
	s.submit = components.NewButton("Log in", func() tea.Cmd {
		_, cmd := s.send()
		return cmd
	})
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.setFocus(fieldUsername)
}

func (s *LoginScreen) Title() string {
	if s.mode == modeRegister {
		return "Register"
	}
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Register"
	if s.mode == modeRegister {
		toggle = "Log in"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// fieldCount is the number of inputs visible in the current mode.
func (s *LoginScreen) fieldCount() int {
	if s.mode == modeRegister && s.auth.RequiresInvite() {
		return 3
	}
	return 2
}

func (s *LoginScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	s.submit.Focused = i == s.fieldCount()-1
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == i {
			cmd = s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
	return cmd
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		return s.handleResult(msg)

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "ctrl+r":
			if s.mode == modeLogin {
				s.mode = modeRegister
			} else {
				s.mode = modeLogin
			}
			s.errMsg, s.info = "", ""
			return s, s.setFocus(fieldUsername)
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % s.fieldCount())
		case "shift+tab", "up":
			return s, s.setFocus((s.focus + s.fieldCount() - 1) % s.fieldCount())
		case "enter":
			if s.focus < s.fieldCount()-1 {
				return s, s.setFocus(s.focus + 1)
			}
			var cmd tea.Cmd
			s.submit, cmd = s.submit.Update(msg)
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

// send validates the form and starts the login or registration.
func (s *LoginScreen) send() (screen.Screen, tea.Cmd) {
	username := strings.TrimSpace(s.inputs[fieldUsername].Value())
	password := s.inputs[fieldPassword].Value()
	invite := s.inputs[fieldInvite].Value()

	if username == "" || password == "" {
		s.errMsg = "Please enter a username and password."
		return s, nil
	}
	if len(password) > auth.MaxPasswordBytes {
		s.errMsg = passwordTooLong
		return s, nil
	}

	s.busy = true
	s.errMsg, s.info = "", ""
	m, a := s.mode, s.auth
	return s, func() tea.Msg {
		ctx := context.Background()
		if m == modeRegister {
			return authResultMsg{Mode: m, Username: username, Err: a.Register(ctx, username, password, invite)}
		}
		_, err := a.Login(ctx, username, password)
		return authResultMsg{Mode: m, Username: username, Err: err}
	}
}

func (s *LoginScreen) handleResult(msg authResultMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.errMsg = errorText(msg.Err)
		s.inputs[fieldPassword].Reset()
		return s, s.setFocus(fieldPassword)
	}

	if msg.Mode == modeRegister {
		s.mode = modeLogin
		s.info = "Account created. Log in with your new password."
		s.inputs[fieldPassword].Reset()
		s.inputs[fieldInvite].Reset()
		return s, s.setFocus(fieldPassword)
	}

	next := s.next(msg.Username)
	return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
}

// The input limit counts characters; accented letters and symbols take
// more than one byte each.
const passwordTooLong = "That password is too long. Use fewer special characters."

// errorText turns an auth failure into a message for the form.
func errorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, store.ErrUserExists):
		return "That username is already taken."
	case errors.Is(err, auth.ErrInviteRequired), errors.Is(err, store.ErrCodeUnavailable):
		return "Invalid or already used invitation code."
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return passwordTooLong
	case errors.Is(err, auth.ErrEmptyUsername), errors.Is(err, auth.ErrEmptyPassword):
		return "Please enter a username and password."
	default:
		return "Something went wrong: " + err.Error()
	}
}

func (s *LoginScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width, height))
	sections = append(sections, theme.Subtitle.Render("Practice for the AMC, one problem at a time"))
	sections = append(sections, "")

	heading := "Log in"
	if s.mode == modeRegister {
		heading = "Create an account"
	}
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(heading))
	sections = append(sections, "")

	var form []string
	for i := 0; i < s.fieldCount(); i++ {
		form = append(form, s.inputs[i].View())
	}
	sections = append(sections, components.Card(strings.Join(form, "\n\n"), components.ContentWidth(width)))
	s.submit.Label = heading
	if s.mode == modeRegister {
		s.submit.Label = "Register"
	}
	sections = append(sections, s.submit.View())

	switch {
	case s.busy:
		sections = append(sections, theme.Hint.Render("Checking..."))
	case s.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	case s.info != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Success).Render(s.info))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

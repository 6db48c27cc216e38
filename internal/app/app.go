package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/screens/home"
	"github.com/abhisek/amcprep/internal/screens/login"
	"github.com/abhisek/amcprep/internal/ui/layout"
)

// Options wires the services the screens need.
type Options struct {
	Auth login.Authenticator
	// Home is passed to the home screen after login. Its Logout is set here.
	Home home.Deps
	Log  logrus.FieldLogger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	log      logrus.FieldLogger
	username string
	level    int
	width    int
	height   int
}

// newAppModel creates a new AppModel starting at the login screen.
func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	var newLogin func() screen.Screen
	newLogin = func() screen.Screen {
		return login.New(opts.Auth, func(username string) screen.Screen {
			opts.Log.WithField("user", username).Info("logged in")
			deps := opts.Home
			deps.Logout = newLogin
			return home.New(deps, username)
		})
	}

	return AppModel{
		router: router.New(newLogin()),
		log:    opts.Log,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.UserMsg:
		if msg.Username == "" && m.username != "" {
			m.log.WithField("user", m.username).Info("logged out")
		}
		m.username, m.level = msg.Username, msg.Level
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, the active screen and the footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.username, m.level, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// footerHints prefers the active screen's own hints.
func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

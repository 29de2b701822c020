// Package tui provides a terminal user interface for traktor2rekordbox
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/traktor2rekordbox/pkg/analysis"
	"github.com/james-see/traktor2rekordbox/pkg/batch"
	"github.com/james-see/traktor2rekordbox/pkg/converter"
)

// Deck colors: Traktor blue, Rekordbox orange
var (
	deckBlue   = lipgloss.Color("#3FA9F5")
	deckOrange = lipgloss.Color("#FF8C1A")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#222222")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(deckBlue).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(deckBlue).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(deckOrange).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(deckBlue).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(deckOrange)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(deckBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// Action is what a menu item does with the picked file
type Action int

const (
	ActionConvert Action = iota
	ActionAnalyze
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	Direction   converter.Direction
	Extensions  []string
}

var menuItems = []MenuItem{
	{
		Title:       "NML → XML",
		Description: "Convert a Traktor collection to a Rekordbox library",
		Action:      ActionConvert,
		Direction:   converter.NMLToRekordbox,
		Extensions:  []string{".nml"},
	},
	{
		Title:       "XML → NML",
		Description: "Convert a Rekordbox library to a Traktor collection",
		Action:      ActionConvert,
		Direction:   converter.RekordboxToNML,
		Extensions:  []string{".xml"},
	},
	{
		Title:       "Analyze",
		Description: "List tracks and their cues, tracks without cues first",
		Action:      ActionAnalyze,
		Extensions:  []string{".nml", ".xml"},
	},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	opts         converter.Options
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	item         MenuItem
	result       *converter.ConversionResult
	report       *analysis.Report
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion or analysis completion
type conversionDoneMsg struct {
	outputFile string
	result     *converter.ConversionResult
	report     *analysis.Report
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(opts converter.Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".nml", ".xml"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(deckOrange)

	return Model{
		opts:       opts,
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// the file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.perform())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.result = msg.result
		m.report = msg.report
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.item = menuItems[m.menuIndex]
		if m.item.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = m.item.Extensions
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.result = nil
		m.report = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) perform() tea.Cmd {
	item, input, opts := m.item, m.selectedFile, m.opts
	return func() tea.Msg {
		if item.Action == ActionAnalyze {
			data, err := os.ReadFile(input)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			report, err := analysis.Analyze(data)
			return conversionDoneMsg{report: report, err: err}
		}

		outputFile := batch.OutputPath(input, item.Direction.Target, "")
		result, err := converter.New(opts).ConvertFile(input, outputFile)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		return conversionDoneMsg{outputFile: outputFile, result: result}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		if m.report != nil {
			s.WriteString(m.viewReport())
		} else {
			s.WriteString(m.viewResult())
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(deckOrange).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s FILE ", strings.ToUpper(strings.Join(trimDots(m.item.Extensions), "/")))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	verb := "Converting"
	if m.item.Action == ActionAnalyze {
		verb = "Analyzing"
	}
	s.WriteString(titleStyle.Render(" " + strings.ToUpper(verb) + " "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s %s...\n", m.spinner.View(), verb, filepath.Base(m.selectedFile)))
	if m.item.Action == ActionConvert {
		s.WriteString(statusStyle.Render("  " + m.item.Direction.String()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
		if m.result != nil {
			s.WriteString(fmt.Sprintf("\nTracks: %d  Playlists: %d", m.result.Tracks, m.result.Playlists))
			if m.result.SkippedReferences > 0 {
				s.WriteString("\n")
				s.WriteString(warnStyle.Render(fmt.Sprintf("%d playlist entries had no matching track", m.result.SkippedReferences)))
			}
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

// maxReportRows keeps the analysis view on one screen
const maxReportRows = 15

func (m Model) viewReport() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" ANALYSIS "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%d tracks, %d without cues\n\n", len(m.report.Tracks), m.report.WithoutCues))

	for i, t := range m.report.Tracks {
		if i == maxReportRows {
			s.WriteString(helpStyle.Render(fmt.Sprintf("… %d more", len(m.report.Tracks)-i)))
			break
		}
		line := fmt.Sprintf("%s - %s (%d cues)", t.Artist, t.Title, len(t.Cues))
		if t.HasHotcues {
			s.WriteString(menuStyle.Render(line))
		} else {
			s.WriteString(warnStyle.Render("! " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func trimDots(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}

func asciiLogo() string {
	logo := `
  _____ ____      _    _  _______ ___  ____    ____    ____  _  _______ _  _____  ____  ____   _____  __
 |_   _|  _ \    / \  | |/ /_   _/ _ \|  _ \  |___ \  |  _ \| |/ / ____| |/ / _ \|  _ \|  _ \ / _ \ \/ /
   | | | |_) |  / _ \ | ' /  | || | | | |_) |   __) | | |_) | ' /|  _| | ' / | | | |_) | | | | | | \  /
   | | |  _ <  / ___ \| . \  | || |_| |  _ <   / __/  |  _ <| . \| |___| . \ |_| |  _ <| |_| | |_| /  \
   |_| |_| \_\/_/   \_\_|\_\ |_| \___/|_| \_\ |_____| |_| \_\_|\_\_____|_|\_\___/|_| \_\____/ \___/_/\_\
`
	return lipgloss.NewStyle().Foreground(deckBlue).Render(logo)
}

// Run starts the TUI application
func Run(opts converter.Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

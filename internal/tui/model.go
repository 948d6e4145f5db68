// Package tui is a terminal pattern viewer for a playing song.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/aonplay-go/internal/replay"
	"github.com/cbegin/aonplay-go/internal/song"
)

// Playback is the part of the player the viewer drives.
type Playback interface {
	State() (replay.State, bool)
	Pause()
	Resume()
	IsPlaying() bool
	Stop() error
	SetMasterVolume(v float64)
	MasterVolume() float64
	SetStereoMix(mix float64)
}

type Model struct {
	Song   *song.Song
	Player Playback
	Title  string

	Width  int
	Height int

	state     replay.State
	hasState  bool
	paused    bool
	stereoMix float64
	ShowHelp  bool
	StatusMsg string
}

func NewModel(s *song.Song, player Playback, title string) Model {
	return Model{Song: s, Player: player, Title: title, Width: 120, Height: 30}
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	case tickMsg:
		m.state, m.hasState = m.Player.State()
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		_ = m.Player.Stop()
		return m, tea.Quit
	case "?", "f1":
		m.ShowHelp = !m.ShowHelp
	case " ", "space":
		if m.paused {
			m.Player.Resume()
			m.StatusMsg = "playing"
		} else {
			m.Player.Pause()
			m.StatusMsg = "paused"
		}
		m.paused = !m.paused
	case "+", "=":
		m.Player.SetMasterVolume(min(m.Player.MasterVolume()+0.1, 2))
		m.StatusMsg = fmt.Sprintf("volume %d%%", int(m.Player.MasterVolume()*100+0.5))
	case "-":
		m.Player.SetMasterVolume(max(m.Player.MasterVolume()-0.1, 0))
		m.StatusMsg = fmt.Sprintf("volume %d%%", int(m.Player.MasterVolume()*100+0.5))
	case "s":
		m.stereoMix += 0.25
		if m.stereoMix > 1 {
			m.stereoMix = 0
		}
		m.Player.SetStereoMix(m.stereoMix)
		m.StatusMsg = fmt.Sprintf("stereo mix %d%%", int(m.stereoMix*100))
	}
	return m, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	rowNumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	currentStyle = lipgloss.NewStyle().Background(lipgloss.Color("4"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	instStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	fxStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

func (m Model) View() string {
	var b strings.Builder

	title := m.Title
	if t := strings.TrimSpace(m.Song.Title); t != "" {
		title = t
	}
	b.WriteString(titleStyle.Render(title))
	if m.Song.Author != "" {
		b.WriteString(dimStyle.Render(" by " + m.Song.Author))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	visible := max(m.Height-10, 8)
	pattern := m.state.Pattern
	if !m.hasState {
		pattern = m.Song.PatternAt(0)
	}
	first := min(max(m.state.Row-visible/2, 0), max(song.Rows-visible, 0))
	for row := first; row < min(first+visible, song.Rows); row++ {
		b.WriteString(m.renderRow(pattern, row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderMeters())
	if m.ShowHelp {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("space pause/resume  +/- volume  s stereo mix  q quit"))
	}
	if m.StatusMsg != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.StatusMsg))
	}
	return b.String()
}

func (m Model) renderStatus() string {
	st := m.state
	state := playingStyle.Render("PLAYING")
	if m.paused || !m.hasState {
		state = dimStyle.Render("STOPPED")
	}
	led := "off"
	if st.Filter {
		led = "on"
	}
	return fmt.Sprintf("%s  pos %02d/%02d  pat %02d  row %02d  speed %d  bpm %d  led %s  loops %d",
		state, st.Position, m.Song.NumPositions(), st.Pattern, st.Row, st.Speed, st.Tempo, led, st.LoopCount)
}

func (m Model) renderRow(pattern, row int) string {
	var b strings.Builder
	b.WriteString(rowNumStyle.Render(fmt.Sprintf("%02d", row)))
	for ch := 0; ch < m.Song.Channels; ch++ {
		c, _ := m.Song.Cell(pattern, row, ch)
		b.WriteString(dimStyle.Render("|"))
		b.WriteString(renderCell(c))
	}
	line := b.String()
	if m.hasState && row == m.state.Row {
		return currentStyle.Render(line)
	}
	return line
}

func renderCell(c song.Cell) string {
	if c.Empty() {
		return dimStyle.Render("--- .. . ...")
	}
	note := dimStyle.Render("---")
	if c.Note != 0 {
		note = noteStyle.Render(NoteName(c.Note))
	}
	inst := dimStyle.Render("..")
	if c.Instrument != 0 {
		inst = instStyle.Render(fmt.Sprintf("%02X", c.Instrument))
	}
	return note + " " + inst + " " + fmt.Sprintf("%X", c.Arpeggio) + " " + fxStyle.Render(fmt.Sprintf("%X%02X", c.Effect, c.Arg))
}

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// NoteName formats a 1-based note number; 0 is "---".
func NoteName(n uint8) string {
	if n == 0 {
		return "---"
	}
	i := int(n) - 1
	return fmt.Sprintf("%s%d", noteNames[i%12], i/12)
}

// renderMeters draws one volume bar per channel from the mixed voice volume.
func (m Model) renderMeters() string {
	const width = 16
	var lines []string
	for ch, cs := range m.state.Channels {
		level := cs.Volume * cs.TrackVolume / 64
		if !cs.Playing {
			level = 0
		}
		n := min(max(level*width/64, 0), width)
		bar := playingStyle.Render(strings.Repeat("#", n)) + dimStyle.Render(strings.Repeat(".", width-n))
		lines = append(lines, fmt.Sprintf("ch%d %s ins %02d %s", ch+1, bar, cs.Instrument, cs.Envelope))
	}
	return strings.Join(lines, "\n")
}

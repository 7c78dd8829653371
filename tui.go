package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tylorschafer/Pulse/haptic"
	"github.com/tylorschafer/Pulse/log"
	"github.com/tylorschafer/Pulse/metronome"
	"github.com/tylorschafer/Pulse/settings"
)

// TUI message types
type BeatMsg struct {
	BeatInMeasure int
	Accented      bool
}
type PlayStateMsg struct{ Playing bool }
type StatusMsg struct{ Text string }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	accentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	beatOnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tuiModel struct {
	engine  *metronome.Engine
	haptics *haptic.Dispatcher
	cfg     settings.Settings

	playing  bool
	beat     int
	accented bool
	haptOn   bool
	status   string
}

func newTUIModel(engine *metronome.Engine, haptics *haptic.Dispatcher, cfg settings.Settings) tuiModel {
	return tuiModel{
		engine:  engine,
		haptics: haptics,
		cfg:     cfg,
		haptOn:  haptics.Enabled(),
	}
}

// tuiSink forwards completion-context beat events into the program's
// message loop; rendering happens on the TUI goroutine.
type tuiSink struct {
	p *tea.Program
}

func (s *tuiSink) Beat(beatInMeasure int, accented bool) {
	s.p.Send(BeatMsg{BeatInMeasure: beatInMeasure, Accented: accented})
}

func (s *tuiSink) PlayState(playing bool) {
	s.p.Send(PlayStateMsg{Playing: playing})
}

func (m tuiModel) startCmd() tea.Cmd {
	engine := m.engine
	cfg := m.cfg
	return func() tea.Msg {
		if err := engine.Start(engineSettings(cfg)); err != nil {
			return StatusMsg{Text: err.Error()}
		}
		return PlayStateMsg{Playing: true}
	}
}

func (m tuiModel) Init() tea.Cmd {
	return m.startCmd()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BeatMsg:
		m.beat = msg.BeatInMeasure
		m.accented = msg.Accented
		m.playing = true
		return m, nil

	case PlayStateMsg:
		m.playing = msg.Playing
		m.status = ""
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.engine.Stop()
		return m, tea.Quit

	case " ":
		if m.playing {
			m.engine.Stop()
			m.playing = false
			return m, nil
		}
		return m, m.startCmd()

	case "up", "k", "+", "=":
		return m.adjustTempo(1)
	case "down", "j", "-":
		return m.adjustTempo(-1)

	case "right", "l":
		return m.adjustBeats(1)
	case "left", "h":
		return m.adjustBeats(-1)

	case "a":
		m.cfg.AccentFirstBeat = !m.cfg.AccentFirstBeat
		if m.playing {
			return m, m.startCmd() // accent is baked per buffer; restart applies it cleanly
		}
		return m, nil

	case "v":
		m.haptOn = !m.haptOn
		m.haptics.SetEnabled(m.haptOn)
		m.cfg.HapticsEnabled = m.haptOn
		return m, nil

	case "[":
		return m.adjustVolume(-0.05)
	case "]":
		return m.adjustVolume(0.05)
	}
	return m, nil
}

func (m tuiModel) adjustTempo(delta int) (tea.Model, tea.Cmd) {
	bpm := m.cfg.Tempo + delta
	if bpm < metronome.MinTempo || bpm > metronome.MaxTempo {
		return m, nil
	}
	m.cfg.Tempo = bpm
	if err := m.engine.SetTempo(bpm); err != nil {
		m.status = err.Error()
	}
	return m, nil
}

func (m tuiModel) adjustBeats(delta int) (tea.Model, tea.Cmd) {
	beats := m.cfg.BeatsPerMeasure + delta
	if beats < 1 || beats > 12 {
		return m, nil
	}
	m.cfg.BeatsPerMeasure = beats
	if m.playing {
		return m, m.startCmd()
	}
	return m, nil
}

func (m tuiModel) adjustVolume(delta float64) (tea.Model, tea.Cmd) {
	v := m.cfg.Volume + delta
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.cfg.Volume = v
	m.engine.SetVolume(v)
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder

	state := "stopped"
	if m.playing {
		state = "playing"
	}
	b.WriteString(titleStyle.Render("pulse"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d BPM · %d/4 · vol %.0f%% · %s",
		m.cfg.Tempo, m.cfg.BeatsPerMeasure, m.cfg.Volume*100, state)))
	b.WriteString("\n\n  ")

	for i := 0; i < m.cfg.BeatsPerMeasure; i++ {
		switch {
		case m.playing && i == m.beat && m.accented:
			b.WriteString(accentStyle.Render("●"))
		case m.playing && i == m.beat:
			b.WriteString(beatOnStyle.Render("●"))
		default:
			b.WriteString(dimStyle.Render("·"))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	haptics := "off"
	if m.haptOn {
		haptics = "on"
	}
	accent := "off"
	if m.cfg.AccentFirstBeat {
		accent = "on"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  accent %s · haptics %s\n", accent, haptics)))

	if m.status != "" {
		b.WriteString(errStyle.Render("  " + m.status))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("\n  space play/stop · ↑/↓ tempo · ←/→ beats · [/] volume · a accent · v haptics · q quit\n"))
	return b.String()
}

func runTUI(engine *metronome.Engine, haptics *haptic.Dispatcher, cfg settings.Settings) {
	p := tea.NewProgram(newTUIModel(engine, haptics, cfg), tea.WithAltScreen())

	var sink BeatSink = &tuiSink{p: p}
	engine.SetObserver(sink.Beat)

	// OS interruptions stop the engine; resuming is a user action.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		engine.Stop()
		sink.PlayState(false)
		p.Quit()
	}()

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
	}
	engine.Stop()

	// Settings edited during the session travel in the model, so saving the
	// copy the program ended with covers the quit key and signals alike.
	if m, ok := final.(tuiModel); ok {
		if err := m.cfg.Save(); err != nil {
			log.Warnf("saving settings: %v", err)
		}
	}
}

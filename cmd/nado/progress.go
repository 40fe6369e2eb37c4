package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type caseDoneMsg struct {
	done  int
	total int
}

type runFinishedMsg struct{}

// progressUI renders case completion as a terminal progress
// bar. It implements engine.Notifier; the engine never knows
// how progress is drawn.
type progressUI struct {
	prog *tea.Program
	done chan struct{}
}

func newProgressUI() *progressUI {
	model := progressModel{
		bar: progress.New(progress.WithDefaultGradient()),
	}
	return &progressUI{
		prog: tea.NewProgram(model, tea.WithOutput(os.Stderr)),
		done: make(chan struct{}),
	}
}

func (ui *progressUI) Start() {
	go func() {
		defer close(ui.done)
		if _, err := ui.prog.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "progress ui error: %v\n", err)
		}
	}()
}

func (ui *progressUI) Stop() {
	ui.prog.Send(runFinishedMsg{})
	<-ui.done
}

func (ui *progressUI) CaseCompleted(done, total int) {
	ui.prog.Send(caseDoneMsg{done: done, total: total})
}

type progressModel struct {
	bar   progress.Model
	done  int
	total int
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case caseDoneMsg:
		m.done = msg.done
		m.total = msg.total
		return m, m.bar.SetPercent(float64(m.done) / float64(m.total))

	case runFinishedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.total == 0 {
		return ""
	}
	return fmt.Sprintf("%s %d/%d\n", m.bar.View(), m.done, m.total)
}

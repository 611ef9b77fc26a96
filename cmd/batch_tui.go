package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wiiware-modder/config"
	"wiiware-modder/patch"
)

// batchProgressMsg wraps one dispatcher progress event for the TUI.
type batchProgressMsg patch.ProgressEvent

// batchDoneMsg signals that the dispatcher finished the whole batch.
type batchDoneMsg struct{}

// batchModel controls the UI for the batch command
type batchModel struct {
	spinner      spinner.Model
	progressChan chan patch.ProgressEvent

	cfg       config.Config
	patchPath string
	files     []string
	outDir    string

	// State
	status    string
	current   string
	completed []string
	errors    []string
	done      bool

	totalDone   int
	totalFailed int
}

func initialBatchModel(cfg config.Config, patchPath string, files []string, outDir string) batchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return batchModel{
		spinner:      s,
		progressChan: make(chan patch.ProgressEvent, 100), // Buffer slightly to avoid blocking
		cfg:          cfg,
		patchPath:    patchPath,
		files:        files,
		outDir:       outDir,
		status:       "Starting batch...",
		completed:    []string{},
		errors:       []string{},
	}
}

func (m batchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startBatch(),
		m.waitForActivity(),
	)
}

func (m batchModel) startBatch() tea.Cmd {
	return func() tea.Msg {
		// Run the batch in a separate goroutine; events stream back over
		// the progress channel and the close signals completion.
		go func() {
			defer close(m.progressChan)
			dispatcher := patch.NewDispatcher(m.cfg.BackupDir)
			dispatcher.ApplyBatch(m.files, m.patchPath, m.outDir, func(ev patch.ProgressEvent) {
				m.progressChan <- ev
			})
		}()
		return nil
	}
}

func (m batchModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.progressChan
		if !ok {
			return batchDoneMsg{}
		}
		return batchProgressMsg(ev)
	}
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// If done, allow any key to exit
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case batchProgressMsg:
		name := filepath.Base(msg.File)
		switch msg.Phase {
		case "patching":
			m.current = name
			m.status = fmt.Sprintf("Patching %s (%d/%d)...", name, msg.Index, msg.Total)

		case "done":
			m.completed = append(m.completed, name)
			m.totalDone++

		case "failed":
			m.errors = append(m.errors, fmt.Sprintf("%s: %v", name, msg.Err))
			m.totalFailed++
		}
		return m, m.waitForActivity()

	case batchDoneMsg:
		m.done = true
		m.status = fmt.Sprintf("Finished: %d patched, %d failed", m.totalDone, m.totalFailed)
		return m, tea.Quit
	}

	return m, nil
}

func (m batchModel) View() string {
	var symbol string
	if m.done {
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n\n", symbol, m.status)

	if len(m.errors) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Errors:") + "\n"
		for _, e := range m.errors {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	// Show last few completed
	if len(m.completed) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Patched:") + "\n"
		start := 0
		if len(m.completed) > 5 && !m.done {
			start = len(m.completed) - 5
		}
		for i := start; i < len(m.completed); i++ {
			s += fmt.Sprintf("  • %s\n", m.completed[i])
		}
		s += "\n"
	}

	return s
}

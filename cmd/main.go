package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotstate/dotstate"
	"github.com/dotstate/dotstate/examples"
	"github.com/dotstate/dotstate/persist"
	"github.com/dotstate/dotstate/teabind"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "dotstate",
	Short: "Interactive counter demo backed by a dotstate store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCounter()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "pebble database directory; empty keeps the counter in memory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCounter() error {
	var storage persist.Storage
	if dbPath != "" {
		pdb, err := persist.OpenPebble(dbPath)
		if err != nil {
			return err
		}
		defer pdb.Close()
		storage = pdb
	}

	store := examples.NewCounterStore(storage)
	if storage != nil {
		if err := store.Persist().ReHydrate(context.Background()); err != nil {
			return err
		}
	}

	p := tea.NewProgram(counterModel{store: store, state: store.GetState()})
	cancel := teabind.Bind[examples.CounterState](store, p)
	defer cancel()

	_, err := p.Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type counterModel struct {
	store *dotstate.Store[examples.CounterState]
	state examples.CounterState
	err   error
}

func (m counterModel) Init() tea.Cmd { return nil }

func (m counterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case teabind.StateMsg:
		if st, ok := msg.State.(examples.CounterState); ok {
			m.state = st
		}
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "up", "+", "k":
			m.err = m.store.Dispatch("increment")
		case "down", "-", "j":
			m.err = m.store.Dispatch("decrement")
		case "r":
			m.err = <-m.store.DispatchAsync(context.Background(), "reset")
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m counterModel) View() string {
	s := titleStyle.Render("dotstate counter") + "\n\n"
	s += fmt.Sprintf("count: %s (step %d)\n", countStyle.Render(fmt.Sprint(m.state.Count)), m.state.Step)
	if m.err != nil {
		s += errStyle.Render(m.err.Error()) + "\n"
	}
	s += "\n" + helpStyle.Render("up/+ increment, down/- decrement, r reset, q quit") + "\n"
	return s
}

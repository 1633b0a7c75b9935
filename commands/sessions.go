package commands

import (
	"fmt"
	"strconv"

	"github.com/jol333/TaskTimer/internal/application/widget"
	"github.com/jol333/TaskTimer/internal/core/clock"
	"github.com/jol333/TaskTimer/internal/core/session"
	"github.com/jol333/TaskTimer/internal/data/store"
	"github.com/jol333/TaskTimer/internal/presentation/formatter"
	"github.com/jol333/TaskTimer/internal/util"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	pruneDryRun  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List timers in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(m *session.Manager) error {
			f, err := formatter.New(outputFormat)
			if err != nil {
				return err
			}
			return f.Format(cmd.OutOrStdout(), records(m))
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Add a timer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(m *session.Manager) error {
			s := m.AddSession()
			if len(args) == 1 {
				s.Rename(args[0])
				s.EndEdit()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q\n", s.ID(), s.Label())
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <index|id>",
	Short: "Remove a timer and its recorded time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(m *session.Manager) error {
			index, err := resolveTarget(m, args[0])
			if err != nil {
				return err
			}
			s := m.At(index)
			m.RemoveSession(index)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", s.ID(), s.Label())
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <index|id> <label>",
	Short: "Change a timer's label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(args[0], func(s *session.Session) {
			s.Rename(args[1])
			s.EndEdit()
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", s.ID(), s.Label())
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <index|id>",
	Short: "Stop a timer and set it back to zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(args[0], func(s *session.Session) {
			s.Reset()
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s %q\n", s.ID(), s.Label())
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <index|id>",
	Short: "Start a stopped timer or stop a running one",
	Long: `Start a stopped timer or stop a running one.

A timer started here is recorded as running and keeps counting once the
widget is started.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(args[0], func(s *session.Session) {
			s.Toggle()
			state := "stopped"
			if s.Running() {
				state = "running"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q is %s at %s\n", s.ID(), s.Label(), state, s.DisplayString())
		})
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored timers that are no longer in the display order",
	Long: `Delete stored timers that are no longer in the display order.

A timer record without an order entry is never restored. These are left behind
when the process dies between writing a record and writing the order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		orphans, err := store.Orphans(st)
		if err != nil {
			return fmt.Errorf("failed to find orphaned timers: %w", err)
		}
		for _, id := range orphans {
			if pruneDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would remove %s\n", id)
				continue
			}
			if err := st.Delete(id); err != nil {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		}
		util.LogInfof("Pruned %d orphaned timers (dry run: %v)", len(orphans), pruneDryRun)
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false,
		"List orphaned timers without deleting them")
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatTable,
		"Output format (table, json, csv, summary)")

	rootCmd.AddCommand(listCmd, addCmd, removeCmd, renameCmd, resetCmd, toggleCmd, pruneCmd)
}

// withManager restores the persisted timers, runs fn and shuts the manager
// down so every change is written before the store closes.
func withManager(fn func(m *session.Manager) error) error {
	env, err := setup()
	if err != nil {
		return err
	}
	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Nothing drains the dispatcher: commands never wait for a tick.
	dispatcher := clock.NewDispatcher(clockwork.NewRealClock(), 0)
	m := session.NewManager(st, dispatcher, session.WithConfig(widget.SessionConfig(env.config)))
	m.RestoreAll()
	defer func() {
		m.Shutdown()
		dispatcher.Wait()
	}()

	return fn(m)
}

func withTarget(target string, fn func(s *session.Session)) error {
	return withManager(func(m *session.Manager) error {
		index, err := resolveTarget(m, target)
		if err != nil {
			return err
		}
		fn(m.At(index))
		return nil
	})
}

// resolveTarget accepts a display index or a session id.
func resolveTarget(m *session.Manager, target string) (int, error) {
	if index, err := strconv.Atoi(target); err == nil && index >= 0 && index < m.Len() {
		return index, nil
	}
	if index := m.IndexOf(target); index >= 0 {
		return index, nil
	}
	if m.Len() == 0 {
		return -1, fmt.Errorf("no timers exist")
	}
	return -1, fmt.Errorf("no timer %q (use an index 0-%d or an id)", target, m.Len()-1)
}

func records(m *session.Manager) []formatter.SessionRecord {
	sessions := m.Sessions()
	out := make([]formatter.SessionRecord, len(sessions))
	for i, s := range sessions {
		out[i] = formatter.SessionRecord{
			Index:   i,
			ID:      s.ID(),
			Label:   s.Label(),
			Elapsed: s.DisplayString(),
			Seconds: s.Elapsed().Seconds(),
			Running: s.Running(),
		}
	}
	return out
}

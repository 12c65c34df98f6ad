package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/summary"
	"github.com/roach88/rollcall/internal/workbook"
)

// NewEventCommand creates the event command group.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events"},
		Short:   "Manage events",
	}

	cmd.AddCommand(newEventListCommand(rootOpts))
	cmd.AddCommand(newEventAddCommand(rootOpts))
	cmd.AddCommand(newEventUpdateCommand(rootOpts))
	cmd.AddCommand(newEventDeleteCommand(rootOpts))
	cmd.AddCommand(newEventNextIDCommand(rootOpts))
	cmd.AddCommand(newEventRatesCommand(rootOpts))
	cmd.AddCommand(newEventTypesCommand(rootOpts))
	cmd.AddCommand(newEventSelectCommand(rootOpts))

	return cmd
}

// filterFlags are the event filter flags shared by "event list" and "summary".
type filterFlags struct {
	typ, name, from, to string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.typ, "type", "", "only events of this type")
	cmd.Flags().StringVar(&ff.name, "name", "", "only events with this name")
	cmd.Flags().StringVar(&ff.from, "from", "", "only events starting at or after this time")
	cmd.Flags().StringVar(&ff.to, "to", "", "only events starting at or before this time; a bare date includes that whole day")
}

func (ff *filterFlags) filter() (summary.EventFilter, error) {
	f := summary.EventFilter{Type: ff.typ, Name: ff.name}
	var err error
	if f.From, err = workbook.ParseTime(ff.from); err != nil {
		return f, fmt.Errorf("--from: %w", err)
	}
	if f.To, err = workbook.EndOfDay(ff.to); err != nil {
		return f, fmt.Errorf("--to: %w", err)
	}
	return f, nil
}

// eventRows renders events for a text table.
func eventRows(events []roster.Event) [][]string {
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{e.ID, e.Name, e.Type, workbook.FormatTime(e.From), workbook.FormatTime(e.To)}
	}
	return rows
}

var eventHeader = []string{"ID", "NAME", "TYPE", "FROM", "TO"}

func newEventListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ff     filterFlags
		recent bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Long: `List events in table order, or newest first with --recent.

Example:
  rollcall event list --type Workshop
  rollcall event list --from 2025-07-01 --to 2025-07-31 --recent`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			filter, err := ff.filter()
			if err != nil {
				return f.Reject(ErrCodeInvalid, ExitCommandError, err.Error())
			}

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				events, err := s.store.Events()
				if err != nil {
					return err
				}
				selected := make([]roster.Event, 0, len(events))
				for _, e := range events {
					if filter.Match(e) {
						selected = append(selected, e)
					}
				}
				if recent {
					selected = summary.SortByFromDesc(selected)
				}
				return f.Success(selected, table(eventHeader, eventRows(selected)))
			})
		},
	}

	ff.register(cmd)
	cmd.Flags().BoolVar(&recent, "recent", false, "sort by start time, newest first")

	return cmd
}

// eventFlags are the event fields accepted by add and update.
type eventFlags struct {
	id, name, typ, from, to string
}

func (ef *eventFlags) times() (from, to time.Time, err error) {
	if from, err = workbook.ParseTime(ef.from); err != nil {
		return from, to, fmt.Errorf("--from: %w", err)
	}
	if to, err = workbook.ParseTime(ef.to); err != nil {
		return from, to, fmt.Errorf("--to: %w", err)
	}
	return from, to, nil
}

func newEventAddCommand(rootOpts *RootOptions) *cobra.Command {
	var ef eventFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Long: `Add an event. Without --id the next free ID is used. Times accept
YYYY-MM-DDTHH:MM, RFC 3339, or a bare date.

Example:
  rollcall event add --name "Kickoff" --type Meeting --from 2025-07-01T09:00 --to 2025-07-01T10:00`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			from, to, err := ef.times()
			if err != nil {
				return f.Reject(ErrCodeInvalid, ExitCommandError, err.Error())
			}
			e := roster.Event{ID: ef.id, Name: ef.name, Type: ef.typ, From: from, To: to}

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if e.ID == "" {
					id, err := s.store.NextEventID()
					if err != nil {
						return err
					}
					e.ID = id
				}
				if err := s.store.AddEvent(cmd.Context(), e); err != nil {
					return err
				}
				return f.Success(e, fmt.Sprintf("Added event %s\n", e.ID))
			})
		},
	}

	cmd.Flags().StringVar(&ef.id, "id", "", "event ID (default: next free ID)")
	cmd.Flags().StringVar(&ef.name, "name", "", "event name")
	cmd.Flags().StringVar(&ef.typ, "type", "", "event type")
	cmd.Flags().StringVar(&ef.from, "from", "", "start time")
	cmd.Flags().StringVar(&ef.to, "to", "", "end time")

	return cmd
}

func newEventUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var ef eventFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an event",
		Long: `Change an event. Only the flags given are changed; the event ID is fixed.
An empty --from or --to clears the time.

Example:
  rollcall event update E003 --type Workshop --to 2025-07-03T12:00`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			from, to, err := ef.times()
			if err != nil {
				return f.Reject(ErrCodeInvalid, ExitCommandError, err.Error())
			}

			var upd attendance.EventUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &ef.name
			}
			if flags.Changed("type") {
				upd.Type = &ef.typ
			}
			if flags.Changed("from") {
				upd.From = &from
			}
			if flags.Changed("to") {
				upd.To = &to
			}

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if err := s.store.UpdateEvent(cmd.Context(), args[0], upd); err != nil {
					return err
				}
				e, err := s.store.Event(args[0])
				if err != nil {
					return err
				}
				return f.Success(e, fmt.Sprintf("Updated event %s\n", e.ID))
			})
		},
	}

	cmd.Flags().StringVar(&ef.name, "name", "", "new event name")
	cmd.Flags().StringVar(&ef.typ, "type", "", "new event type")
	cmd.Flags().StringVar(&ef.from, "from", "", "new start time")
	cmd.Flags().StringVar(&ef.to, "to", "", "new end time")

	return cmd
}

func newEventDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete an event and its attendance column",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				ev, err := s.store.Event(args[0])
				if err != nil {
					return err
				}
				if err := s.store.DeleteEvent(cmd.Context(), ev.ID); err != nil {
					return err
				}
				if sel, err := s.selectedEvent(cmd.Context()); err == nil && sel == ev.ID {
					if err := s.selectEvent(cmd.Context(), ""); err != nil {
						return err
					}
				}
				return f.Success(map[string]string{"id": ev.ID}, fmt.Sprintf("Deleted event %s\n", ev.ID))
			})
		},
	}
}

func newEventNextIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "next-id",
		Short:         "Print the next free event ID",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				id, err := s.store.NextEventID()
				if err != nil {
					return err
				}
				return f.Success(map[string]string{"id": id}, id+"\n")
			})
		},
	}
}

func newEventRatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rates",
		Short:         "Show the attendance rate of every event",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				rates, err := s.store.EventRates()
				if err != nil {
					return err
				}
				rows := make([][]string, len(rates))
				for i, r := range rates {
					pct := "-"
					if r.Percent != nil {
						pct = strconv.Itoa(*r.Percent) + "%"
					}
					rows[i] = []string{r.EventID, strconv.Itoa(r.Present), strconv.Itoa(r.Total), pct}
				}
				return f.Success(rates, table([]string{"EVENT", "PRESENT", "MARKED", "RATE"}, rows))
			})
		},
	}
}

// EventTypes is the JSON payload of the types command.
type EventTypes struct {
	Types []string `json:"types"`
	Names []string `json:"names"`
}

func newEventTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "List the distinct event types and names",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				events, err := s.store.Events()
				if err != nil {
					return err
				}
				out := EventTypes{
					Types: summary.DistinctTypes(events),
					Names: summary.DistinctNames(events),
				}
				text := "Types:\n"
				for _, t := range out.Types {
					text += "  " + t + "\n"
				}
				text += "Names:\n"
				for _, n := range out.Names {
					text += "  " + n + "\n"
				}
				return f.Success(out, text)
			})
		},
	}
}

func newEventSelectCommand(rootOpts *RootOptions) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "select [id]",
		Short: "Show or set the event \"mark\" uses by default",
		Long: `Without arguments, print the selected event. With an ID, select it.

Example:
  rollcall event select E004
  rollcall mark A001 present
  rollcall event select --clear`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				ctx := cmd.Context()
				switch {
				case unset:
					if err := s.selectEvent(ctx, ""); err != nil {
						return err
					}
				case len(args) == 1:
					ev, err := s.store.Event(args[0])
					if err != nil {
						return err
					}
					if err := s.selectEvent(ctx, ev.ID); err != nil {
						return err
					}
				}

				id, err := s.selectedEvent(ctx)
				if err != nil {
					return err
				}
				text := "No event selected\n"
				if id != "" {
					text = fmt.Sprintf("Selected event %s\n", id)
				}
				return f.Success(map[string]string{"event_id": id}, text)
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "clear the selection")

	return cmd
}

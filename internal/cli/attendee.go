package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/roster"
)

// NewAttendeeCommand creates the attendee command group.
func NewAttendeeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attendee",
		Aliases: []string{"attendees"},
		Short:   "Manage attendees",
	}

	cmd.AddCommand(newAttendeeListCommand(rootOpts))
	cmd.AddCommand(newAttendeeAddCommand(rootOpts))
	cmd.AddCommand(newAttendeeUpdateCommand(rootOpts))
	cmd.AddCommand(newAttendeeDeleteCommand(rootOpts))
	cmd.AddCommand(newAttendeeNextIDCommand(rootOpts))

	return cmd
}

func newAttendeeListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List attendees",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				attendees, err := s.store.Attendees()
				if err != nil {
					return err
				}
				rows := make([][]string, len(attendees))
				for i, a := range attendees {
					rows[i] = []string{a.ID, a.FullName, a.NickName}
				}
				return f.Success(attendees, table([]string{"ID", "FULL NAME", "NICK NAME"}, rows))
			})
		},
	}
}

func newAttendeeAddCommand(rootOpts *RootOptions) *cobra.Command {
	var a roster.Attendee

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an attendee",
		Long: `Add an attendee. Without --id the next free ID is used.

Example:
  rollcall attendee add --name "Ann Lee" --nick Ann
  rollcall attendee add --id A042 --name "Bob Stone"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if a.ID == "" {
					id, err := s.store.NextAttendeeID()
					if err != nil {
						return err
					}
					a.ID = id
				}
				if err := s.store.AddAttendee(cmd.Context(), a); err != nil {
					return err
				}
				return f.Success(a, fmt.Sprintf("Added attendee %s\n", a.ID))
			})
		},
	}

	cmd.Flags().StringVar(&a.ID, "id", "", "attendee ID (default: next free ID)")
	cmd.Flags().StringVar(&a.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&a.NickName, "nick", "", "nick name")

	return cmd
}

func newAttendeeUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var id, fullName, nickName string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an attendee",
		Long: `Change an attendee. Only the flags given are changed. Changing the ID
keeps the attendee's marks.

Example:
  rollcall attendee update A001 --nick Annie
  rollcall attendee update A001 --id A100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var upd attendance.AttendeeUpdate
			if cmd.Flags().Changed("id") {
				upd.ID = &id
			}
			if cmd.Flags().Changed("name") {
				upd.FullName = &fullName
			}
			if cmd.Flags().Changed("nick") {
				upd.NickName = &nickName
			}

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if err := s.store.UpdateAttendee(cmd.Context(), args[0], upd); err != nil {
					return err
				}
				newID := args[0]
				if upd.ID != nil {
					newID = *upd.ID
				}
				a, err := s.store.Attendee(newID)
				if err != nil {
					return err
				}
				return f.Success(a, fmt.Sprintf("Updated attendee %s\n", a.ID))
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "new attendee ID")
	cmd.Flags().StringVar(&fullName, "name", "", "new full name")
	cmd.Flags().StringVar(&nickName, "nick", "", "new nick name")

	return cmd
}

func newAttendeeDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete an attendee and their marks",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if err := s.store.DeleteAttendee(cmd.Context(), args[0]); err != nil {
					return err
				}
				return f.Success(map[string]string{"id": args[0]}, fmt.Sprintf("Deleted attendee %s\n", args[0]))
			})
		},
	}
}

func newAttendeeNextIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "next-id",
		Short:         "Print the next free attendee ID",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				id, err := s.store.NextAttendeeID()
				if err != nil {
					return err
				}
				return f.Success(map[string]string{"id": id}, id+"\n")
			})
		},
	}
}

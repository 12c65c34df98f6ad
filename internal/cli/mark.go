package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/roster"
)

// MarkResult is the JSON payload of the mark command.
type MarkResult struct {
	AttendeeID string `json:"attendee_id"`
	EventID    string `json:"event_id"`
	Mark       string `json:"mark"`
	Applied    bool   `json:"applied"`
}

// NewMarkCommand creates the mark command.
func NewMarkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <attendee> [event] <present|absent|unset>",
		Short: "Record whether an attendee attended an event",
		Long: `Record a mark for one attendee and event. Without an event ID the event
chosen with "event select" is used. "unset" clears the mark.

Marking an event that no longer exists changes nothing.

Example:
  rollcall mark A001 E004 present
  rollcall event select E004 && rollcall mark A002 absent`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			attendeeID, eventID, token := args[0], "", args[len(args)-1]
			if len(args) == 3 {
				eventID = args[1]
			}

			mk, err := roster.ParseMark(token)
			if err != nil {
				return f.Fail(err)
			}

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				ctx := cmd.Context()
				if eventID == "" {
					if eventID, err = s.selectedEvent(ctx); err != nil {
						return err
					}
					if eventID == "" {
						return f.Reject(ErrCodeInvalid, ExitCommandError, "no event given and none selected")
					}
				}

				applied, err := s.store.MarkAttendance(ctx, attendeeID, eventID, mk)
				if err != nil {
					return err
				}
				result := MarkResult{AttendeeID: attendeeID, EventID: eventID, Mark: mk.String(), Applied: applied}
				text := fmt.Sprintf("Marked %s %s for %s\n", attendeeID, mk, eventID)
				switch {
				case !applied:
					text = fmt.Sprintf("Event %s has no attendance column, nothing marked\n", eventID)
				case !mk.IsSet():
					text = fmt.Sprintf("Cleared mark of %s for %s\n", attendeeID, eventID)
				}
				return f.Success(result, text)
			})
		},
	}
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/summary"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ff     filterFlags
		search string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show per-attendee attendance",
		Long: `Show how many of the selected events each attendee was marked for and
how many of those they attended. Unmarked events do not count.

Without filters every event is selected.

Example:
  rollcall summary
  rollcall summary --type Workshop --from 2025-07-01 --to 2025-07-31
  rollcall summary --search ann --format json`,
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
				rows, err := s.store.FilteredSummary(filter)
				if err != nil {
					return err
				}
				rows = summary.Search(rows, search)
				f.VerboseLog("%d attendees", len(rows))
				return f.Success(rows, summaryTable(rows))
			})
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "only attendees whose full or nick name contains this text")

	return cmd
}

func summaryTable(rows []summary.AttendeeSummary) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.AttendeeID,
			r.FullName,
			r.NickName,
			strconv.Itoa(r.Present),
			strconv.Itoa(r.Total),
			r.PercentLabel(),
		}
	}
	return table([]string{"ID", "FULL NAME", "NICK NAME", "PRESENT", "MARKED", "RATE"}, cells)
}

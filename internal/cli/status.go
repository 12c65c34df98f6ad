package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/cache"
)

// Status is the JSON payload of the status command.
type Status struct {
	Database      string       `json:"database"`
	CacheKey      string       `json:"cache_key"`
	Loaded        bool         `json:"loaded"`
	Attendees     int          `json:"attendees"`
	Events        int          `json:"events"`
	MarkedRows    int          `json:"marked_rows"`
	SelectedEvent string       `json:"selected_event,omitempty"`
	Entry         *cache.Entry `json:"entry,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show what the cache holds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				ctx := cmd.Context()
				st := Status{
					Database: rootOpts.Database,
					CacheKey: rootOpts.CacheKey,
					Loaded:   s.hydrated,
				}
				if st.CacheKey == "" {
					st.CacheKey = attendance.DefaultCacheKey
				}

				entry, ok, err := s.cache.Stat(ctx, st.CacheKey)
				if err != nil {
					return err
				}
				if ok {
					st.Entry = &entry
				}
				if st.SelectedEvent, err = s.selectedEvent(ctx); err != nil {
					return err
				}

				if s.hydrated {
					wb, err := s.store.Workbook()
					if err != nil {
						return err
					}
					st.Attendees = len(wb.Attendees)
					st.Events = len(wb.Events)
					st.MarkedRows = wb.Matrix.Len()
				}
				return f.Success(st, statusText(st))
			})
		},
	}
}

func statusText(st Status) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Database:  %s\n", st.Database)
	fmt.Fprintf(&sb, "Cache key: %s\n", st.CacheKey)
	if !st.Loaded {
		sb.WriteString("No attendance data (run \"rollcall init\" or \"rollcall import\")\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Attendees: %d\n", st.Attendees)
	fmt.Fprintf(&sb, "Events:    %d\n", st.Events)
	fmt.Fprintf(&sb, "Marked:    %d attendees\n", st.MarkedRows)
	if st.SelectedEvent != "" {
		fmt.Fprintf(&sb, "Selected:  %s\n", st.SelectedEvent)
	}
	if st.Entry != nil {
		fmt.Fprintf(&sb, "Revision:  %s (%d bytes, %s)\n",
			st.Entry.Revision, st.Entry.Size, st.Entry.UpdatedAt.Format(time.RFC3339))
	}
	return sb.String()
}

package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/workbook"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start with empty attendee, event and attendance tables",
		Long: `Initialize the cache with empty tables.

Refuses to overwrite existing data unless --force is given.

Example:
  rollcall init
  rollcall init --force --db ./club.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				if s.hydrated && !force {
					return f.Reject(ErrCodeExists, ExitFailure,
						fmt.Sprintf("%s already holds attendance data (use --force to discard it)", rootOpts.Database))
				}
				if err := s.store.Reset(cmd.Context()); err != nil {
					return err
				}
				return f.Success(map[string]string{"database": rootOpts.Database},
					fmt.Sprintf("Initialized empty attendance data in %s\n", rootOpts.Database))
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "discard existing data")

	return cmd
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	File      string   `json:"file"`
	Attendees int      `json:"attendees"`
	Events    int      `json:"events"`
	Warnings  []string `json:"warnings"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Replace all data with the contents of a workbook",
		Long: `Import an xlsx workbook with the sheets "attendee", "event" and
"attendance", replacing everything held in the cache.

Missing sheets yield empty tables. Malformed rows are skipped and reported
as warnings; references to unknown attendees or events are dropped.

Example:
  rollcall import ./attendance.xlsx`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			file, err := os.Open(args[0])
			if err != nil {
				_ = f.Error(ErrCodeGeneric, err.Error(), nil)
				return &ExitError{Code: ExitCommandError, Message: "failed to open workbook", Err: err, Reported: true}
			}
			defer file.Close()

			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				report, err := s.store.Import(cmd.Context(), file)
				if err != nil {
					return err
				}
				wb, err := s.store.Workbook()
				if err != nil {
					return err
				}

				result := ImportResult{
					File:      args[0],
					Attendees: len(wb.Attendees),
					Events:    len(wb.Events),
					Warnings:  make([]string, 0, len(report.Warnings)),
				}
				for _, w := range report.Warnings {
					result.Warnings = append(result.Warnings, w.Error())
					f.VerboseLog("warning: %v", w)
				}
				return f.Success(result, fmt.Sprintf("Imported %d attendees and %d events from %s (%d warnings)\n",
					result.Attendees, result.Events, args[0], len(result.Warnings)))
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write all data to a workbook",
		Long: `Export attendees, events and attendance as an xlsx workbook.

Attendees without any marks are left out of the attendance sheet.

Example:
  rollcall export ./attendance.xlsx`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withSession(cmd.Context(), rootOpts, f, func(s *session) error {
				var buf bytes.Buffer
				if err := s.store.Export(&buf); err != nil {
					return err
				}
				if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
					_ = f.Error(ErrCodeGeneric, err.Error(), nil)
					return &ExitError{Code: ExitCommandError, Message: "failed to write workbook", Err: err, Reported: true}
				}
				return f.Success(map[string]interface{}{"file": args[0], "bytes": buf.Len()},
					fmt.Sprintf("Exported to %s\n", args[0]))
			})
		},
	}
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := workbook.DefaultTemplateOptions()
	var month string

	cmd := &cobra.Command{
		Use:   "template <file.xlsx>",
		Short: "Write a sample workbook",
		Long: `Generate a sample workbook with placeholder attendees, events spread
over one month, and a deterministic attendance pattern.

Example:
  rollcall template ./sample.xlsx
  rollcall template ./small.xlsx --attendees 10 --events 5 --month 2025-09`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if month != "" {
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return f.Reject(ErrCodeInvalid, ExitCommandError, fmt.Sprintf("invalid --month %q: want YYYY-MM", month))
				}
				opts.Month = m
			}
			if opts.Attendees < 0 || opts.Events < 0 {
				return f.Reject(ErrCodeInvalid, ExitCommandError, "--attendees and --events must not be negative")
			}

			data, err := workbook.Marshal(workbook.Template(opts))
			if err != nil {
				return f.Fail(err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				_ = f.Error(ErrCodeGeneric, err.Error(), nil)
				return &ExitError{Code: ExitCommandError, Message: "failed to write workbook", Err: err, Reported: true}
			}
			return f.Success(map[string]interface{}{
				"file":      args[0],
				"attendees": opts.Attendees,
				"events":    opts.Events,
			}, fmt.Sprintf("Wrote template with %d attendees and %d events to %s\n", opts.Attendees, opts.Events, args[0]))
		},
	}

	cmd.Flags().IntVar(&opts.Attendees, "attendees", opts.Attendees, "number of attendees")
	cmd.Flags().IntVar(&opts.Events, "events", opts.Events, "number of events")
	cmd.Flags().StringVar(&month, "month", "", "month to spread events over (YYYY-MM)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "seed for the randomized attendance")

	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seniorplus/agenda/internal/event"
	"github.com/seniorplus/agenda/internal/query"
)

// ListOptions holds the flags for the list command.
type ListOptions struct {
	Root *RootOptions

	Today    bool
	Date     string
	From     string
	To       string
	Category string
	Group    bool
}

// NewListCommand creates the list command.
func NewListCommand(root *RootOptions) *cobra.Command {
	opts := &ListOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List care events",
		Long: `List care events, optionally filtered by day, range or category.

Without filters, every event is listed in date order. Filters compose:
--category narrows whichever date selection is active.`,
		Example: `  agenda list --today
  agenda list --date 2025-04-12
  agenda list --from 2025-04-01 --to 2025-04-30 --group
  agenda list --category Medicação`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Today, "today", false, "only today's events")
	cmd.Flags().StringVar(&opts.Date, "date", "", "only events on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.From, "from", "", "range start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&opts.To, "to", "", "range end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "only events in this category")
	cmd.Flags().BoolVar(&opts.Group, "group", false, "group output by day")
	cmd.MarkFlagsMutuallyExclusive("today", "date")
	cmd.MarkFlagsRequiredTogether("from", "to")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	formatter := newFormatter(cmd, opts.Root)

	for _, d := range []string{opts.Date, opts.From, opts.To} {
		if d != "" && !event.ValidDate(d) {
			formatter.Error(ErrCodeBadInput, fmt.Sprintf("data inválida %q (use YYYY-MM-DD)", d), nil)
			return NewExitError(ExitFailure, "invalid date filter")
		}
	}

	app, err := newApp(cmd, opts.Root)
	if err != nil {
		return err
	}
	defer app.Close()

	events := selectEvents(app, opts)

	if opts.Root.Format == "json" {
		return formatter.Success(events)
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "Nenhum evento encontrado.")
		return nil
	}

	if opts.Group {
		groups := query.GroupByDay(events)
		for _, day := range query.SortedDays(groups) {
			fmt.Fprintln(out, day)
			for _, e := range groups[day] {
				fmt.Fprintln(out, "  "+renderEvent(e))
			}
		}
		return nil
	}

	for _, e := range events {
		fmt.Fprintf(out, "%s  %s\n", e.Date, renderEvent(e))
	}
	return nil
}

// selectEvents applies the date selection, then the category filter.
func selectEvents(app *App, opts *ListOptions) []event.Event {
	all := app.Store.Events()

	var events []event.Event
	switch {
	case opts.Today:
		events = query.Today(all, app.Clock.Now().In(app.Config.Location()))
	case opts.Date != "":
		events = query.ByDate(all, opts.Date)
	case opts.From != "":
		events = query.ByDateRange(all, opts.From, opts.To)
	default:
		events = query.ByDateRange(all, "0000-01-01", "9999-12-31")
	}

	if opts.Category != "" {
		events = query.ByCategory(events, opts.Category)
	}
	return events
}

// renderEvent formats one event as a single terminal line without its date.
func renderEvent(e event.Event) string {
	var b strings.Builder

	if e.Status == event.StatusDone {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}

	switch {
	case e.StartTime != "" && e.EndTime != "":
		fmt.Fprintf(&b, "%s-%s", e.StartTime, e.EndTime)
	case e.StartTime != "":
		b.WriteString(e.StartTime)
		b.WriteString("      ")
	default:
		b.WriteString("--:--      ")
	}

	fmt.Fprintf(&b, "  %s  (%s)", e.Title, e.Category)
	if e.Location != "" {
		fmt.Fprintf(&b, "  @ %s", e.Location)
	}
	fmt.Fprintf(&b, "  %s", e.ID)
	return b.String()
}

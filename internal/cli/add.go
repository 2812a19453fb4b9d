package cli

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/seniorplus/agenda/internal/event"
)

// AddOptions holds the flags for the add command.
type AddOptions struct {
	Root *RootOptions

	Title       string `validate:"required"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
	Start       string `validate:"omitempty,datetime=15:04"`
	End         string `validate:"omitempty,datetime=15:04"`
	Location    string
	Description string
	Category    string
}

// NewAddCommand creates the add command.
func NewAddCommand(root *RootOptions) *cobra.Command {
	opts := &AddOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new care event",
		Long: `Register a new care event with Pendente status.

The date defaults to today and the category to Outro when omitted.`,
		Example: `  agenda add --title "Consulta cardiologista" --date 2025-04-12 --start 14:30 --category Consulta
  agenda add --title "Caminhada no parque" --start 08:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "event title (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "event date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end time (HH:MM)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "event location")
	cmd.Flags().StringVar(&opts.Description, "desc", "", "event description")
	cmd.Flags().StringVar(&opts.Category, "category", "", "event category ("+strings.Join(event.Categories, "|")+")")
	cmd.MarkFlagRequired("title")

	return cmd
}

func runAdd(cmd *cobra.Command, opts *AddOptions) error {
	formatter := newFormatter(cmd, opts.Root)

	if err := validator.New().Struct(opts); err != nil {
		formatter.Error(ErrCodeBadInput, fmt.Sprintf("entrada inválida: %v", err), nil)
		return NewExitError(ExitFailure, "invalid input")
	}
	if opts.Category != "" && !event.ValidCategory(opts.Category) {
		formatter.Error(ErrCodeBadInput, fmt.Sprintf("categoria desconhecida %q (use %s)", opts.Category, strings.Join(event.Categories, ", ")), nil)
		return NewExitError(ExitFailure, "unknown category")
	}
	if opts.End != "" && opts.Start != "" && opts.End <= opts.Start {
		formatter.Error(ErrCodeBadInput, "o horário de término deve ser depois do horário de início", nil)
		return NewExitError(ExitFailure, "end time before start time")
	}

	app, err := newApp(cmd, opts.Root)
	if err != nil {
		return err
	}
	defer app.Close()

	category := opts.Category
	if category == "" {
		category = app.Config.DefaultCategory
	}

	e, ok := app.Store.Add(cmd.Context(),
		opts.Title, opts.Date, opts.Start, opts.End,
		opts.Location, opts.Description, category)
	if !ok {
		formatter.Error(ErrCodeBadInput, "não foi possível registrar o evento", nil)
		return NewExitError(ExitFailure, "event rejected")
	}

	if opts.Root.Format == "json" {
		return formatter.Success(e)
	}
	formatter.VerboseLog("id: %s", e.ID)
	return nil
}

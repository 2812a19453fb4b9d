package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seniorplus/agenda/internal/event"
)

// UpdateOptions holds the flags for the update command.
type UpdateOptions struct {
	Root *RootOptions

	Title       string
	Date        string
	Start       string
	End         string
	Location    string
	Description string
	Category    string
	Status      string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(root *RootOptions) *cobra.Command {
	opts := &UpdateOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing event",
		Long: `Update an existing event. Only the flags you pass are changed; every
other field keeps its current value.`,
		Example: `  agenda update 0195f7a2-... --start 15:00 --location "Sala 3"
  agenda update 0195f7a2-... --status Concluído`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "new title")
	cmd.Flags().StringVar(&opts.Date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "new start time (HH:MM)")
	cmd.Flags().StringVar(&opts.End, "end", "", "new end time (HH:MM)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "new location")
	cmd.Flags().StringVar(&opts.Description, "desc", "", "new description")
	cmd.Flags().StringVar(&opts.Category, "category", "", "new category")
	cmd.Flags().StringVar(&opts.Status, "status", "", "new status (Pendente|Concluído)")

	return cmd
}

func runUpdate(cmd *cobra.Command, opts *UpdateOptions, id string) error {
	formatter := newFormatter(cmd, opts.Root)

	partial := map[string]any{}
	flagField := map[string]string{
		"title":    "title",
		"date":     "date",
		"start":    "startTime",
		"end":      "endTime",
		"location": "location",
		"desc":     "description",
		"category": "category",
		"status":   "status",
	}
	values := map[string]string{
		"title":    opts.Title,
		"date":     opts.Date,
		"start":    opts.Start,
		"end":      opts.End,
		"location": opts.Location,
		"desc":     opts.Description,
		"category": opts.Category,
		"status":   opts.Status,
	}
	for flag, field := range flagField {
		if cmd.Flags().Changed(flag) {
			partial[field] = values[flag]
		}
	}

	if len(partial) == 0 {
		formatter.Error(ErrCodeBadInput, "nenhum campo para atualizar", nil)
		return NewExitError(ExitFailure, "no fields to update")
	}
	if d, ok := partial["date"].(string); ok && !event.ValidDate(d) {
		formatter.Error(ErrCodeBadInput, fmt.Sprintf("data inválida %q (use YYYY-MM-DD)", d), nil)
		return NewExitError(ExitFailure, "invalid date")
	}
	if st, ok := partial["status"].(string); ok && !event.ValidStatus(st) {
		formatter.Error(ErrCodeBadInput, fmt.Sprintf("status desconhecido %q (use Pendente ou Concluído)", st), nil)
		return NewExitError(ExitFailure, "unknown status")
	}

	app, err := newApp(cmd, opts.Root)
	if err != nil {
		return err
	}
	defer app.Close()

	e, found := app.Store.Update(cmd.Context(), id, partial)
	if !found {
		formatter.Error(ErrCodeNotFound, "Evento não encontrado.", nil)
		return NewExitError(ExitFailure, "event not found")
	}

	if opts.Root.Format == "json" {
		return formatter.Success(e)
	}
	return nil
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, root, args[0])
		},
	}
	return cmd
}

func runRemove(cmd *cobra.Command, root *RootOptions, id string) error {
	formatter := newFormatter(cmd, root)

	app, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Store.Delete(cmd.Context(), id) {
		formatter.Error(ErrCodeNotFound, "Evento não encontrado.", nil)
		return NewExitError(ExitFailure, "event not found")
	}

	if root.Format == "json" {
		return formatter.Success(map[string]string{"id": id})
	}
	return nil
}

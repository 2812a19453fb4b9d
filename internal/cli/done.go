package cli

import (
	"github.com/spf13/cobra"
)

// NewDoneCommand creates the done command, which flips an event between
// Pendente and Concluído.
func NewDoneCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle an event between Pendente and Concluído",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDone(cmd, root, args[0])
		},
	}
	return cmd
}

func runDone(cmd *cobra.Command, root *RootOptions, id string) error {
	formatter := newFormatter(cmd, root)

	app, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	e, found := app.Store.ToggleStatus(cmd.Context(), id)
	if !found {
		formatter.Error(ErrCodeNotFound, "Evento não encontrado.", nil)
		return NewExitError(ExitFailure, "event not found")
	}

	if root.Format == "json" {
		return formatter.Success(e)
	}
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import events from a JSON export",
		Long: `Import events from a JSON file holding an array of records.

Records may use either the canonical field names (title, date, startTime)
or the legacy export names (titulo, data, horaInicio). Each record must
carry a title, a date and a start time of its own; records missing any of
them are rejected individually without aborting the batch. Use "-" to
read from stdin.`,
		Example: `  agenda import backup.json
  cat backup.json | agenda import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, args[0])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, root *RootOptions, path string) error {
	formatter := newFormatter(cmd, root)

	records, err := readImportFile(cmd, path)
	if err != nil {
		formatter.Error(ErrCodeImportFile, fmt.Sprintf("não foi possível ler o arquivo de importação: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}

	app, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	admitted := app.Store.ImportBatch(cmd.Context(), records)
	if len(admitted) == 0 {
		// The store already reported the reason through its notifier.
		if root.Format == "json" {
			formatter.Error(ErrCodeBadInput, "nenhum evento válido na importação", map[string]int{"received": len(records)})
		}
		return NewExitError(ExitFailure, "no events imported")
	}

	if root.Format == "json" {
		return formatter.Success(admitted)
	}
	return nil
}

func readImportFile(cmd *cobra.Command, path string) ([]map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("expected a JSON array of records: %w", err)
	}
	return records, nil
}

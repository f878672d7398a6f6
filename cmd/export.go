package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
	"github.com/mrameshirs/face-gate/internal/records"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the student dataset",
	Long: `Export the student dataset as CSV or JSON.

Example:
  face-gate export --format json --output students.json
  face-gate export --columns id,name,city`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "csv", "Output format: csv or json")
	exportCmd.Flags().String("output", "-", "Output file, - for stdout")
	exportCmd.Flags().StringSlice("columns", nil, "Columns to include (default all)")
}

func exportColumns(selected []string) ([]string, error) {
	if len(selected) == 0 {
		return records.Columns(), nil
	}
	known := make(map[string]bool)
	for _, column := range records.Columns() {
		known[column] = true
	}
	for _, column := range selected {
		if !known[column] {
			return nil, fmt.Errorf("unknown column %q", column)
		}
	}
	return selected, nil
}

func writeCSV(out *os.File, columns []string, students []records.Student) error {
	w := csv.NewWriter(out)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range students {
		row := make([]string, len(columns))
		for j, column := range columns {
			row[j], _ = students[i].Field(column)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(out *os.File, columns []string, students []records.Student) error {
	rows := make([]map[string]string, 0, len(students))
	for i := range students {
		row := make(map[string]string, len(columns))
		for _, column := range columns {
			row[column], _ = students[i].Field(column)
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format := mustGetString(cmd, "format")
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q, expected csv or json", format)
	}
	columns, err := exportColumns(mustGetStringSlice(cmd, "columns"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	students, err := deps.store.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	out := os.Stdout
	if path := mustGetString(cmd, "output"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if format == "json" {
		err = writeJSON(out, columns, students)
	} else {
		err = writeCSV(out, columns, students)
	}
	if err != nil {
		return err
	}

	if out != os.Stdout {
		fmt.Printf("Exported %d student(s)\n", len(students))
	}
	return nil
}

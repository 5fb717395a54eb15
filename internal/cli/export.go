package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hivdash/internal/core"
)

// ExportResult is the output of the export command.
type ExportResult struct {
	AgeGroup  string `json:"age_group" yaml:"age_group"`
	Indicator string `json:"indicator" yaml:"indicator"`
	Year      int    `json:"year" yaml:"year"`
	Path      string `json:"path" yaml:"path"`
	Rows      int    `json:"rows" yaml:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sel selection
		out string
	)

	cmd := &cobra.Command{
		Use:   "export <age-group>",
		Short: "Write one year slice to CSV or XLSX",
		Long: `Write the countries that have a value for the selected indicator and
year. The file format follows the --out extension: .csv or .xlsx.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".csv" && ext != ".xlsx" {
				return usageError(fmt.Errorf("--out %q: extension must be .csv or .xlsx", out))
			}

			t, indicator, values, err := sel.slice(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}

			if err := writeExport(out, ext, sel.Year, values); err != nil {
				return &ExitError{Code: ExitFailure, Message: "export failed", Err: err}
			}

			res := ExportResult{
				AgeGroup:  t.AgeGroup,
				Indicator: indicator,
				Year:      sel.Year,
				Path:      out,
				Rows:      len(values),
			}
			return rootOpts.formatter(cmd).Success(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "wrote %d rows to %s\n", res.Rows, res.Path)
				return err
			})
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", core.ExportFileName, "output file (.csv or .xlsx)")
	return cmd
}

// writeExport writes to a temporary file and renames it into place.
func writeExport(path, ext string, year int, values []core.CountryValue) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hivctl-export-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if ext == ".xlsx" {
		err = core.WriteXLSX(tmp, core.ExportSheetName(year), values)
	} else {
		err = core.WriteCSV(tmp, values)
	}
	if err != nil {
		return err
	}
	// CreateTemp uses 0600; exports are ordinary files.
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var stdout io.Writer = os.Stdout

// writeStructured writes payload as JSON or YAML. It reports false for the
// table format so the caller can render its own view.
func writeStructured(output string, payload any) (bool, error) {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return true, enc.Encode(payload)
	case outputYAML:
		enc := yaml.NewEncoder(stdout)
		defer enc.Close()
		return true, enc.Encode(payload)
	case outputTable, "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q", output)
	}
}

func writeFileTable(files []models.FileRecord) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(stdout, color.YellowString("no images"))
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIMAGE\tSIZE\tCREATED")
	for _, f := range files {
		created := f.Created
		if t := f.CreatedAt(); !t.IsZero() {
			created = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Image, f.FileSize, created)
	}
	return tw.Flush()
}

func success(format string, args ...any) {
	fmt.Fprintln(stdout, color.GreenString(format, args...))
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

const (
	formatTable = "table"
	jsonIndent  = "  "
)

// row is one Property/Value line of a table.
type row struct {
	Property string
	Value    string
}

// render writes value as JSON or YAML, or rows as a table.
func render(out io.Writer, format string, value any, rows []row) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", jsonIndent)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		return nil
	case formatTable, "":
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		for _, line := range rows {
			_ = table.Append(line.Property, line.Value)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// mask hides all but the first few characters of secret.
func mask(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= constants.MaskVisibleChars {
		return constants.MaskedSecret
	}

	return secret[:constants.MaskVisibleChars] + constants.MaskedSecret
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

package cli

import (
	"fmt"
	"io"
	"os"

	"go-broker/internal/features/report"

	"gopkg.in/yaml.v3"
)

// readDefinition loads a definition from path, or stdin when path is "-".
// JSON input parses too since it is valid YAML.
func readDefinition(path string, stdin io.Reader) (report.ReportDefinition, error) {
	var def report.ReportDefinition

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return def, fmt.Errorf("read definition: %w", err)
	}

	if err := yaml.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("parse definition %s: %w", path, err)
	}
	return def, nil
}

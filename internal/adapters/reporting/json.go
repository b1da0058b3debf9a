package reporting

import (
	"encoding/json"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// JSONWriter writes the report as indented JSON.
type JSONWriter struct{}

var _ ports.ReportWriter = JSONWriter{}

func NewJSONWriter() JSONWriter { return JSONWriter{} }

func (JSONWriter) Format() string { return FormatJSON }

func (JSONWriter) Write(report domain.Report, dir, stamp string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return writeFile(Path(dir, stamp, "json"), data)
}

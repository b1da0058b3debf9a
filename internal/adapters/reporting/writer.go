// Package reporting renders the end-of-session report as JSON, HTML or PDF.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// StampLayout formats the timestamp embedded in report file names.
const StampLayout = "20060102_150405"

// Output format names accepted by ForFormat.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatBoth = "both"
	FormatAll  = "all"
)

// Path returns dir/netraptor_audit_<stamp>.<ext>.
func Path(dir, stamp, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("netraptor_audit_%s.%s", stamp, ext))
}

// ForFormat returns the writers for an output format. "both" is JSON and
// HTML; "all" adds PDF.
func ForFormat(format string) ([]ports.ReportWriter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return []ports.ReportWriter{NewJSONWriter()}, nil
	case FormatHTML:
		return []ports.ReportWriter{NewHTMLWriter()}, nil
	case FormatPDF:
		return []ports.ReportWriter{NewPDFExporter()}, nil
	case FormatBoth:
		return []ports.ReportWriter{NewJSONWriter(), NewHTMLWriter()}, nil
	case FormatAll:
		return []ports.ReportWriter{NewJSONWriter(), NewHTMLWriter(), NewPDFExporter()}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func writeFile(path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

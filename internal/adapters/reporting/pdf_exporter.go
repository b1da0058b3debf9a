package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// PDFExporter exports reports to PDF format
type PDFExporter struct{}

var _ ports.ReportWriter = (*PDFExporter)(nil)

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Format() string { return FormatPDF }

func (e *PDFExporter) Write(report domain.Report, dir, stamp string) (string, error) {
	data, err := e.Export(report)
	if err != nil {
		return "", err
	}
	return writeFile(Path(dir, stamp, "pdf"), data)
}

// Export renders the report to PDF bytes.
func (e *PDFExporter) Export(report domain.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addStatistics(pdf, report)
	e.addNetworks(pdf, report.Networks)
	e.addAudit(pdf, report.AuditFindings)
	e.addEvilTwins(pdf, report.EvilTwins)
	e.addAttacks(pdf, report)
	e.addErrors(pdf, report.Errors)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report domain.Report) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Wireless Audit Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	info := report.ScanInfo
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", info.Timestamp.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	iface := info.Interface
	if info.Monitor && info.Active != "" && info.Active != info.Interface {
		iface = fmt.Sprintf("%s (monitor: %s)", info.Interface, info.Active)
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Interface: %s | Session: %s", iface, info.SessionID), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (e *PDFExporter) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report domain.Report) {
	e.section(pdf, "Summary")

	s := report.Summary
	stats := []struct {
		label string
		value int
	}{
		{"Networks", s.TotalNetworks},
		{"WPS Networks", s.WPSNetworks},
		{"Bluetooth Devices", s.BluetoothDevices},
		{"Handshakes Captured", s.HandshakesCapture},
		{"Evil-Twin Groups", s.EvilTwins},
		{"Audit Findings", s.AuditFindings},
	}

	// Two columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(colWidth-50, 7, fmt.Sprintf("%d", stat.value), "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(10)
}

// privacyColor returns RGB color based on network privacy
func privacyColor(p domain.Privacy) (r, g, b int) {
	switch p {
	case domain.PrivacyOpen, domain.PrivacyWEP:
		return 220, 53, 69 // Red
	case domain.PrivacyWPA:
		return 255, 149, 0 // Orange
	case domain.PrivacyWPA2:
		return 52, 199, 89 // Green
	default:
		return 150, 150, 150
	}
}

func severityColor(s domain.Severity) (r, g, b int) {
	switch s {
	case domain.SeverityHigh:
		return 220, 53, 69
	case domain.SeverityMedium:
		return 255, 149, 0
	default:
		return 100, 100, 100
	}
}

func (e *PDFExporter) tableHeader(pdf *gofpdf.Fpdf, widths []float64, titles ...string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, t, "1", ln, "L", true, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
}

func (e *PDFExporter) addNetworks(pdf *gofpdf.Fpdf, networks []domain.NetworkRecord) {
	e.section(pdf, "Networks")
	if len(networks) == 0 {
		e.empty(pdf, "No networks discovered")
		return
	}

	widths := []float64{40, 55, 15, 20, 25, 25}
	e.tableHeader(pdf, widths, "BSSID", "ESSID", "Ch", "Power", "Privacy", "Cipher")
	for _, n := range networks {
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(widths[0], 7, n.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, truncate(n.ESSID, 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", n.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, n.Power.String(), "1", 0, "C", false, 0, "")

		r, g, b := privacyColor(n.Privacy)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(widths[4], 7, string(n.Privacy), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(widths[5], 7, truncate(n.Cipher, 12), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addAudit(pdf *gofpdf.Fpdf, findings []domain.AuditFinding) {
	if len(findings) == 0 {
		return
	}
	e.section(pdf, "WPA Audit")

	widths := []float64{40, 45, 75, 20}
	e.tableHeader(pdf, widths, "BSSID", "ESSID", "Issue", "Severity")
	for _, f := range findings {
		for _, issue := range f.Issues {
			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(widths[0], 7, f.BSSID, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, truncate(f.ESSID, 22), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 7, truncate(issue.Description, 40), "1", 0, "L", false, 0, "")
			r, g, b := severityColor(issue.Severity)
			pdf.SetTextColor(r, g, b)
			pdf.CellFormat(widths[3], 7, string(issue.Severity), "1", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addEvilTwins(pdf *gofpdf.Fpdf, twins []domain.EvilTwinFinding) {
	if len(twins) == 0 {
		return
	}
	e.section(pdf, "Evil-Twin Candidates")

	for _, t := range twins {
		pdf.SetFont("Arial", "B", 11)
		if t.Impersonation {
			pdf.SetTextColor(220, 53, 69)
			pdf.CellFormat(0, 6, t.ESSID+" - probable impersonation", "", 1, "L", false, 0, "")
		} else {
			pdf.SetTextColor(255, 149, 0)
			pdf.CellFormat(0, 6, t.ESSID+" - suspicious", "", 1, "L", false, 0, "")
		}

		privacies := make([]string, len(t.Privacies))
		for i, p := range t.Privacies {
			privacies[i] = string(p)
		}
		channels := make([]string, len(t.Channels))
		for i, c := range t.Channels {
			channels[i] = fmt.Sprintf("%d", c)
		}
		layout := "distinct channels"
		if t.SharedChannel {
			layout = "shared channel"
		}

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, fmt.Sprintf("BSSIDs: %s\nPrivacy: %s\nChannels: %s (%s)",
			strings.Join(t.BSSIDs, ", "), strings.Join(privacies, ", "), strings.Join(channels, ", "), layout), "", "L", false)
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

func (e *PDFExporter) addAttacks(pdf *gofpdf.Fpdf, report domain.Report) {
	if len(report.Handshakes)+len(report.WPSResults)+len(report.Deauths)+len(report.Cracks) == 0 && report.Injection == nil {
		return
	}
	e.section(pdf, "Attacks and Tests")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	line := func(format string, args ...any) {
		pdf.CellFormat(0, 6, fmt.Sprintf(format, args...), "", 1, "L", false, 0, "")
	}

	if report.Injection != nil {
		line("Injection test on %s: working=%t", report.Injection.Interface, report.Injection.Working)
	}
	for _, h := range report.Handshakes {
		line("Handshake %s: %s (%d EAPOL frames)", h.BSSID, h.File, h.EAPOLFrames)
	}
	for _, w := range report.WPSResults {
		if w.Success() {
			line("WPS %s: PIN %s, passphrase %q", w.BSSID, w.PIN, w.Passphrase)
		} else {
			line("WPS %s: %s (last PIN %s)", w.BSSID, w.Reason, w.LastPIN)
		}
	}
	for _, d := range report.Deauths {
		line("Deauth %s: %d packets, success=%t %s", d.BSSID, d.PacketCount, d.Success, truncate(d.Diagnostic, 50))
	}
	for _, c := range report.Cracks {
		if c.Found {
			line("Crack %s: key found", c.File)
		} else {
			line("Crack %s: key not in wordlist", c.File)
		}
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addErrors(pdf *gofpdf.Fpdf, errs []string) {
	if len(errs) == 0 {
		return
	}
	e.section(pdf, "Errors")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(220, 53, 69)
	for _, msg := range errs {
		pdf.MultiCell(0, 5, "- "+msg, "", "L", false)
	}
}

func (e *PDFExporter) empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, msg, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

package reporting

import (
	"bytes"
	"html/template"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"stamp": func(r domain.Report) string { return r.ScanInfo.Timestamp.Format("2006-01-02 15:04:05") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>netraptor audit {{stamp .}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #333; }
h1, h2 { color: #003366; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
.OPN, .WEP { color: #dc3545; font-weight: bold; }
.WPA { color: #ff9500; }
.WPA2 { color: #34c759; }
.HIGH { color: #dc3545; } .MEDIUM { color: #ff9500; } .LOW { color: #999; }
</style>
</head>
<body>
<h1>Wireless audit report</h1>
<p>Session {{.ScanInfo.SessionID}} on {{.ScanInfo.Interface}}{{if .ScanInfo.Monitor}} (monitor: {{.ScanInfo.Active}}){{end}}, {{stamp .}}</p>

<h2>Summary</h2>
<table>
<tr><th>Networks</th><td>{{.Summary.TotalNetworks}}</td></tr>
<tr><th>WPS networks</th><td>{{.Summary.WPSNetworks}}</td></tr>
<tr><th>Bluetooth devices</th><td>{{.Summary.BluetoothDevices}}</td></tr>
<tr><th>Handshakes captured</th><td>{{.Summary.HandshakesCapture}}</td></tr>
<tr><th>Evil-twin groups</th><td>{{.Summary.EvilTwins}}</td></tr>
<tr><th>Audit findings</th><td>{{.Summary.AuditFindings}}</td></tr>
</table>

{{if .Networks}}<h2>Networks</h2>
<table>
<tr><th>BSSID</th><th>ESSID</th><th>Channel</th><th>Band</th><th>Power</th><th>Privacy</th><th>Cipher</th><th>Auth</th></tr>
{{range .Networks}}<tr><td>{{.BSSID}}</td><td>{{.ESSID}}</td><td>{{.Channel}}</td><td>{{.Band}}</td><td>{{.Power}}</td><td class="{{.Privacy}}">{{.Privacy}}</td><td>{{.Cipher}}</td><td>{{.Authentication}}</td></tr>
{{end}}</table>{{end}}

{{if .WPSNetworks}}<h2>WPS networks</h2>
<table>
<tr><th>BSSID</th><th>ESSID</th><th>Channel</th><th>RSSI</th><th>Version</th><th>Locked</th></tr>
{{range .WPSNetworks}}<tr><td>{{.BSSID}}</td><td>{{.ESSID}}</td><td>{{.Channel}}</td><td>{{.RSSI}}</td><td>{{.Version}}</td><td>{{.Locked}}</td></tr>
{{end}}</table>{{end}}

{{if .AuditFindings}}<h2>WPA audit</h2>
<table>
<tr><th>BSSID</th><th>ESSID</th><th>Issue</th><th>Severity</th></tr>
{{range $f := .AuditFindings}}{{range .Issues}}<tr><td>{{$f.BSSID}}</td><td>{{$f.ESSID}}</td><td>{{.Description}}</td><td class="{{.Severity}}">{{.Severity}}</td></tr>
{{end}}{{end}}</table>{{end}}

{{if .EvilTwins}}<h2>Evil-twin candidates</h2>
<table>
<tr><th>ESSID</th><th>BSSIDs</th><th>Privacy</th><th>Channels</th><th>Impersonation</th></tr>
{{range .EvilTwins}}<tr><td>{{.ESSID}}</td><td>{{range .BSSIDs}}{{.}} {{end}}</td><td>{{range .Privacies}}{{.}} {{end}}</td><td>{{range .Channels}}{{.}} {{end}}{{if .SharedChannel}}(shared){{end}}</td><td>{{if .Impersonation}}probable{{else}}no{{end}}</td></tr>
{{end}}</table>{{end}}

{{if .Handshakes}}<h2>Handshakes</h2>
<table>
<tr><th>BSSID</th><th>File</th><th>EAPOL frames</th></tr>
{{range .Handshakes}}<tr><td>{{.BSSID}}</td><td>{{.File}}</td><td>{{.EAPOLFrames}}</td></tr>
{{end}}</table>{{end}}

{{if .WPSResults}}<h2>WPS attacks</h2>
<table>
<tr><th>BSSID</th><th>Outcome</th><th>PIN</th><th>Passphrase</th><th>Last PIN tried</th></tr>
{{range .WPSResults}}<tr><td>{{.BSSID}}</td><td>{{.Reason}}</td><td>{{.PIN}}</td><td>{{.Passphrase}}</td><td>{{.LastPIN}}</td></tr>
{{end}}</table>{{end}}

{{if .Deauths}}<h2>Deauthentication</h2>
<table>
<tr><th>BSSID</th><th>Packets</th><th>Success</th><th>Diagnostic</th></tr>
{{range .Deauths}}<tr><td>{{.BSSID}}</td><td>{{.PacketCount}}</td><td>{{.Success}}</td><td>{{.Diagnostic}}</td></tr>
{{end}}</table>{{end}}

{{if .Bluetooth}}<h2>Bluetooth devices</h2>
<table>
<tr><th>MAC</th><th>Name</th></tr>
{{range .Bluetooth}}<tr><td>{{.MAC}}</td><td>{{.Name}}</td></tr>
{{end}}</table>{{end}}

{{if .Errors}}<h2>Errors</h2>
<ul>{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body>
</html>
`))

// HTMLWriter renders a standalone HTML page.
type HTMLWriter struct{}

var _ ports.ReportWriter = HTMLWriter{}

func NewHTMLWriter() HTMLWriter { return HTMLWriter{} }

func (HTMLWriter) Format() string { return FormatHTML }

func (HTMLWriter) Write(report domain.Report, dir, stamp string) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, report); err != nil {
		return "", err
	}
	return writeFile(Path(dir, stamp, "html"), buf.Bytes())
}

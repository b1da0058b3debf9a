package domain

// ToolInventory records which external packages are usable on this host.
type ToolInventory map[string]bool

// Package names probed at startup.
const (
	PkgAircrack  = "aircrack-ng"
	PkgReaver    = "reaver"
	PkgBluetooth = "bluetooth"
	PkgHcxtools  = "hcxtools"
)

// Has reports whether a package was found. Unknown packages count as missing.
func (t ToolInventory) Has(pkg string) bool {
	return t[pkg]
}

// Missing lists the probed packages that were not found.
func (t ToolInventory) Missing() []string {
	var out []string
	for _, p := range []string{PkgAircrack, PkgReaver, PkgBluetooth, PkgHcxtools} {
		if v, ok := t[p]; ok && !v {
			out = append(out, p)
		}
	}
	return out
}

// Package porter moves credentials in and out of the vault. It imports
// browser CSV exports (Chrome, Firefox, Edge, Opera) plus its own native
// format, and packages full backups as ZIP archives containing a plaintext
// CSV and decrypted attachment files.
package porter

import "strings"

// Layout identifies the column mapping of an import source.
type Layout int

const (
	LayoutGeneric Layout = iota
	LayoutChrome
	LayoutFirefox
	LayoutEdge
	LayoutOpera
	LayoutNative
)

func (l Layout) String() string {
	switch l {
	case LayoutChrome:
		return "chrome"
	case LayoutFirefox:
		return "firefox"
	case LayoutEdge:
		return "edge"
	case LayoutOpera:
		return "opera"
	case LayoutNative:
		return "native"
	default:
		return "generic"
	}
}

// DetectLayout classifies a CSV header by keyword matching on the joined,
// lowercased header line. The native signature (title+category) is checked
// first: matching is substring-based, so the "username" token in a native
// header would otherwise satisfy the browser family's "name" check and
// misroute the vault's own exports. Within the browser branch vendor tokens
// are checked before the Chrome fallback: the family all export
// name+url+username+password, and only Firefox carries formActionOrigin
// (it has no separate name column, which the substring match absorbs).
func DetectLayout(header []string) Layout {
	joined := strings.ToLower(strings.Join(header, ","))

	if strings.Contains(joined, "title") && strings.Contains(joined, "category") {
		return LayoutNative
	}

	if strings.Contains(joined, "name") && strings.Contains(joined, "url") &&
		strings.Contains(joined, "username") && strings.Contains(joined, "password") {
		switch {
		case strings.Contains(joined, "formactionorigin"):
			return LayoutFirefox
		case strings.Contains(joined, "edge"):
			return LayoutEdge
		case strings.Contains(joined, "opera"):
			return LayoutOpera
		default:
			return LayoutChrome
		}
	}

	return LayoutGeneric
}

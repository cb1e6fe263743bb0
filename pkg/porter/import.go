package porter

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// maxTitleLength caps imported titles; browser exports routinely carry
// page titles far longer than anything worth displaying.
const maxTitleLength = 100

// ImportCSV reads a credential CSV at path, sniffs its layout from the
// header, and inserts the rows under the session's user. Rows with an
// empty title or password are skipped, empty usernames default to "N/A",
// and duplicate or malformed rows are skipped with a warning instead of
// aborting the import.
func (e *Engine) ImportCSV(s *vault.Session, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("porter: failed to read import file: %w", err)
	}
	return e.importCSVData(s, data)
}

func (e *Engine) importCSVData(s *vault.Session, data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	records := parseRecords(string(data))
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	result := &Result{Layout: DetectLayout(records[0])}

	for i, row := range records[1:] {
		rowNum := i + 2

		cred, ok := mapRow(result.Layout, row)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: wrong column count for %s layout", rowNum, result.Layout))
			continue
		}
		if cred.Title == "" || cred.Secret == "" {
			continue
		}

		cred.Title = truncate(norm.NFC.String(cred.Title), maxTitleLength)
		if cred.Username == "" {
			cred.Username = "N/A"
		}
		cred.UserID = s.UserID

		if _, err := e.vault.CreateCredential(s, cred); err != nil {
			if errors.Is(err, vault.ErrDuplicateCredential) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("row %d: skipped duplicate %q", rowNum, cred.Title))
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("row %d: skipped %q: %v", rowNum, cred.Title, err))
			}
			continue
		}
		result.Imported++
	}

	return result, nil
}

// parseRecords splits raw CSV data into records. Quoted fields may
// contain commas, newlines, and doubled quotes; surrounding whitespace is
// trimmed from unquoted fields only, so a quoted value keeps deliberate
// leading or trailing spaces. Blank lines are skipped. The parser never
// fails: stray quotes are absorbed rather than rejected, matching how
// browser exports are parsed in practice.
func parseRecords(data string) [][]string {
	var records [][]string
	var record []string
	var field strings.Builder
	quoted := false
	inQuotes := false

	endField := func() {
		value := field.String()
		if !quoted {
			value = strings.TrimSpace(value)
		}
		record = append(record, value)
		field.Reset()
		quoted = false
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inQuotes {
			if c != '"' {
				field.WriteByte(c)
			} else if i+1 < len(data) && data[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
			quoted = true
		case ',':
			endField()
		case '\r':
			// dropped; the \n of a CRLF pair ends the record
		case '\n':
			if len(record) == 0 && field.Len() == 0 && !quoted {
				continue
			}
			endRecord()
		default:
			field.WriteByte(c)
		}
	}
	if len(record) > 0 || field.Len() > 0 || quoted {
		endRecord()
	}
	return records
}

// mapRow applies a layout's column mapping to one CSV row. It returns
// false when the row has too few columns for the layout.
func mapRow(layout Layout, row []string) (*vault.Credential, bool) {
	cred := &vault.Credential{Category: "Other"}

	switch layout {
	case LayoutChrome, LayoutEdge, LayoutOpera:
		// name,url,username,password
		if len(row) < 4 {
			return nil, false
		}
		cred.Title = row[0]
		cred.WebsiteURL = row[1]
		cred.Username = row[2]
		cred.Secret = row[3]

	case LayoutFirefox:
		// url,username,password,httpRealm,formActionOrigin,...
		// Firefox has no name column, so the title comes from the URL host.
		if len(row) < 3 {
			return nil, false
		}
		cred.WebsiteURL = row[0]
		cred.Username = row[1]
		cred.Secret = row[2]
		cred.Title = hostnameFromURL(row[0])

	case LayoutNative:
		// title,username,password,url,category,notes,favorite,created,modified,expiry
		if len(row) < 3 {
			return nil, false
		}
		cred.Title = row[0]
		cred.Username = row[1]
		cred.Secret = row[2]
		if len(row) > 3 {
			cred.WebsiteURL = row[3]
		}
		if len(row) > 4 && row[4] != "" {
			cred.Category = row[4]
		}
		if len(row) > 5 {
			cred.Notes = row[5]
		}
		if len(row) > 6 {
			cred.IsFavorite = row[6] == "1"
		}
		if len(row) > 9 {
			cred.ExpiryDate = row[9]
		}

	default:
		// Generic: assume the first three columns are title, username, password.
		if len(row) < 3 {
			return nil, false
		}
		cred.Title = row[0]
		cred.Username = row[1]
		cred.Secret = row[2]
	}

	return cred, true
}

// hostnameFromURL reduces a URL to its host for use as a title, dropping a
// leading www. The raw value is returned when it does not parse.
func hostnameFromURL(raw string) string {
	withScheme := raw
	if !strings.HasPrefix(withScheme, "http") {
		withScheme = "http://" + withScheme
	}
	u, err := url.Parse(withScheme)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

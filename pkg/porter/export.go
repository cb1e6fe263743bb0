package porter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// csvHeader is the native export header. Import detection relies on the
// title and category columns being present.
const csvHeader = "title,username,password,url,category,notes,favorite,created_date,modified_date,expiry_date"

// ExportCSV writes credentials to path in the native CSV format. Secrets
// are written in plaintext, so the caller must have decrypted them through
// an active session first.
func (e *Engine) ExportCSV(path string, creds []*vault.Credential) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("porter: failed to create export file: %w", err)
	}
	defer f.Close()

	if err := writeCSV(f, creds); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, creds []*vault.Credential) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader + "\n"); err != nil {
		return fmt.Errorf("porter: failed to write CSV: %w", err)
	}

	for _, c := range creds {
		favorite := "0"
		if c.IsFavorite {
			favorite = "1"
		}
		fields := []string{
			escapeCSV(c.Title),
			escapeCSV(c.Username),
			escapeCSV(c.Secret),
			escapeCSV(c.WebsiteURL),
			escapeCSV(c.Category),
			escapeCSV(c.Notes),
			favorite,
			escapeCSV(formatTimestamp(c.CreatedAt)),
			escapeCSV(formatTimestamp(c.ModifiedAt)),
			escapeCSV(c.ExpiryDate),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("porter: failed to write CSV: %w", err)
		}
	}
	return bw.Flush()
}

// escapeCSV quotes a field only when it contains a comma, quote, or
// newline, doubling any embedded quotes.
func escapeCSV(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

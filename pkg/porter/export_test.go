package porter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"with,comma", `"with,comma"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{"trailing space ", "trailing space "},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, escapeCSV(tt.in), "escapeCSV(%q)", tt.in)
	}
}

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	creds := []*vault.Credential{
		{
			Title:      "GMail",
			Username:   "alice@gmail.com",
			Secret:     "p@ss,word",
			WebsiteURL: "https://mail.google.com",
			Category:   "Email",
			Notes:      `has "quotes"`,
			IsFavorite: true,
			ExpiryDate: "2027-01-01",
			CreatedAt:  created,
			ModifiedAt: created,
		},
		{
			Title:    "Bare",
			Username: "bob",
			Secret:   "pw",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, creds))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, csvHeader, lines[0])
	assert.Equal(t,
		`GMail,alice@gmail.com,"p@ss,word",https://mail.google.com,Email,"has ""quotes""",1,2026-01-15 09:30:00,2026-01-15 09:30:00,2027-01-01`,
		lines[1])
	assert.Equal(t, "Bare,bob,pw,,,,0,,,", lines[2])
}

func TestExportImportCSVRoundTrip(t *testing.T) {
	v, s := newTestVault(t)
	e := New(v, nil)

	want := &vault.Credential{
		UserID:     s.UserID,
		Title:      "Round,Trip",
		Username:   "alice",
		Secret:     `pw with "quotes" and, commas`,
		Category:   "Work",
		Notes:      "line one\nline two",
		ExpiryDate: "2027-06-30",
	}
	_, err := v.CreateCredential(s, want)
	require.NoError(t, err)

	creds, err := v.ListCredentials(s, s.UserID)
	require.NoError(t, err)

	path := tempFile(t, "export.csv")
	require.NoError(t, e.ExportCSV(path, creds))

	// Import into a fresh vault and compare the surviving fields.
	v2, s2 := newTestVault(t)
	res, err := New(v2, nil).ImportCSV(s2, path)
	require.NoError(t, err)
	assert.Equal(t, LayoutNative, res.Layout)
	assert.Equal(t, 1, res.Imported)

	got, err := v2.ListCredentials(s2, s2.UserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.Title, got[0].Title)
	assert.Equal(t, want.Username, got[0].Username)
	assert.Equal(t, want.Secret, got[0].Secret)
	assert.Equal(t, want.Category, got[0].Category)
	assert.Equal(t, want.Notes, got[0].Notes)
	assert.Equal(t, want.ExpiryDate, got[0].ExpiryDate)
}

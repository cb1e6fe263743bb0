package health

import (
	"time"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// Stats aggregates the security posture of a credential set.
type Stats struct {
	Total        int
	Weak         int
	Medium       int
	Strong       int
	Reused       int // credentials sharing a secret with at least one other
	Expired      int
	ExpiringSoon int // within the next 7 days
	NoExpiry     int
	Score        float64 // 0..100
}

// expiringSoonWindow is how far ahead an upcoming expiry counts as urgent.
const expiringSoonWindow = 7 * 24 * time.Hour

// Analyze computes Stats over a credential set as of now. Secrets are
// compared byte-for-byte for reuse, so every credential in a reuse group is
// counted, not only the duplicates beyond the first. Unparseable expiry
// dates are treated as unset.
//
// The overall score starts from the strength distribution
// (strong 100, medium 60, weak 20, averaged) and subtracts capped
// penalties for reuse, expiry, and upcoming expiry. An empty set scores 100.
func Analyze(creds []*vault.Credential, now time.Time) *Stats {
	stats := &Stats{Total: len(creds)}
	if stats.Total == 0 {
		stats.Score = 100
		return stats
	}

	today := now.Truncate(24 * time.Hour)
	secretCounts := make(map[string]int, len(creds))

	for _, c := range creds {
		switch Classify(c.Secret) {
		case Strong:
			stats.Strong++
		case Medium:
			stats.Medium++
		default:
			stats.Weak++
		}
		secretCounts[c.Secret]++

		expiry, ok := parseExpiry(c.ExpiryDate)
		switch {
		case !ok:
			stats.NoExpiry++
		case expiry.Before(today):
			stats.Expired++
		case expiry.Before(today.Add(expiringSoonWindow)):
			stats.ExpiringSoon++
		}
	}

	for _, n := range secretCounts {
		if n >= 2 {
			stats.Reused += n
		}
	}

	total := float64(stats.Total)
	strength := (float64(stats.Strong)*100 + float64(stats.Medium)*60 + float64(stats.Weak)*20) / total

	penalties := min(20, float64(stats.Reused)*100/total*0.5) +
		min(20, float64(stats.Expired)*100/total*0.5) +
		min(10, float64(stats.ExpiringSoon)*100/total*0.3)

	stats.Score = max(0, min(100, strength-penalties))
	return stats
}

// NeedsAttention filters credentials that are weak, reused, or expired.
func NeedsAttention(creds []*vault.Credential, now time.Time) []*vault.Credential {
	today := now.Truncate(24 * time.Hour)
	secretCounts := make(map[string]int, len(creds))
	for _, c := range creds {
		secretCounts[c.Secret]++
	}

	var out []*vault.Credential
	for _, c := range creds {
		weak := Classify(c.Secret) == Weak
		reused := secretCounts[c.Secret] >= 2
		expired := false
		if expiry, ok := parseExpiry(c.ExpiryDate); ok && expiry.Before(today) {
			expired = true
		}
		if weak || reused || expired {
			out = append(out, c)
		}
	}
	return out
}

// IsExpired reports whether an ISO expiry date lies strictly before today.
func IsExpired(expiryDate string, now time.Time) bool {
	expiry, ok := parseExpiry(expiryDate)
	return ok && expiry.Before(now.Truncate(24*time.Hour))
}

func parseExpiry(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package db

import (
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	passwordKV    = regexp.MustCompile(`(?i)(password=)(\S+)`)
	passwordInURL = regexp.MustCompile(`^([a-z0-9+]+://[^:/@]+:)([^@]+)(@)`)
)

// sqlitePrefixes select the embedded driver.
var sqlitePrefixes = []string{"sqlite://", "sqlite:", "file:"}

// NormalizeDSN accepts a URL style DSN (postgres://...), a lib/pq key=value
// list or a sqlite DSN. It trims quotes and whitespace and, for key=value
// lists, collapses spaces and defaults sslmode to disable.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" || IsSQLite(s) {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	// Not key=value either; let the driver report it.
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// IsSQLite reports whether dsn targets the embedded sqlite driver.
func IsSQLite(dsn string) bool {
	lower := strings.ToLower(dsn)
	for _, p := range sqlitePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// sqlitePath strips the scheme understood by IsSQLite down to what
// go-sqlite3 expects. "file:" DSNs are passed through untouched.
func sqlitePath(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		return dsn[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		return dsn[len("sqlite:"):]
	default:
		return dsn
	}
}

// MaskDSN hides the password so the DSN can be logged.
func MaskDSN(dsn string) string {
	masked := passwordKV.ReplaceAllString(dsn, `${1}***`)
	return passwordInURL.ReplaceAllString(masked, `${1}***${3}`)
}

package util

import (
	"strings"
	"time"
)

// dateTokens is ordered longest first so "YYYY" is never read as two "YY".
var dateTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// DateLayout converts a template such as "DD.MM.YYYY hh:mm:ss" into a Go time layout.
//
// Supported placeholders:
// - YYYY: 4-digit year
// - YY: 2-digit year
// - MM: 2-digit month (01-12)
// - DD: 2-digit day (01-31)
// - hh: 2-digit hour (00-23)
// - mm: 2-digit minute (00-59)
// - ss: 2-digit second (00-59)
func DateLayout(tpl string) string {
	var b strings.Builder
	for i := 0; i < len(tpl); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(tpl[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(tpl[i])
			i++
		}
	}
	return b.String()
}

// FormatDateTpl formats t using a placeholder template. A zero time yields "".
//
// Example:
//
//	FormatDateTpl(t, "DD.MM.YYYY hh:mm:ss") // "10.11.2023 21:04:05"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout(tpl))
}

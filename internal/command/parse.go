package command

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse splits a chat message into a command name and arguments. The prefix
// must be followed directly by the name; arguments are split on any whitespace.
func Parse(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	rest := content[len(prefix):]
	first, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || unicode.IsSpace(first) {
		return "", nil, false
	}

	fields := strings.Fields(rest)
	return fields[0], fields[1:], true
}

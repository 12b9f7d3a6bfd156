package utils

import "strings"

func StringJoin(items []string, delim string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(items[0])
	for _, item := range items[1:] {
		b.WriteString(delim)
		b.WriteString(item)
	}
	return b.String()
}

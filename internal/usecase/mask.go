package usecase

import (
	"strings"
	"unicode/utf8"
)

const (
	MaskThreshold   = 200
	MaskPlaceholder = "{...masked...}"
)

// MaskLongFields replaces every tab-delimited field of MaskThreshold or more
// characters in mysql batch output with MaskPlaceholder.
func MaskLongFields(output string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if len(line) < MaskThreshold {
			continue
		}
		fields := strings.Split(line, "\t")
		for j, field := range fields {
			if utf8.RuneCountInString(field) >= MaskThreshold {
				fields[j] = MaskPlaceholder
			}
		}
		lines[i] = strings.Join(fields, "\t")
	}
	return strings.Join(lines, "\n")
}

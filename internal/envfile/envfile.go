package envfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrKeyNotFound = errors.New("key not found")

// Lookup returns the value of the first KEY=value line in the file at path.
// A single pair of matching outer quotes is stripped from the value.
func Lookup(path, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	prefix := key + "="
	text := strings.ToValidUTF8(string(data), "")

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		return unquote(strings.TrimSpace(line[len(prefix):])), nil
	}

	return "", fmt.Errorf("%s not found in %s: %w", key, path, ErrKeyNotFound)
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	first, last := val[0], val[len(val)-1]
	if first == last && (first == '"' || first == '\'') {
		return val[1 : len(val)-1]
	}
	return val
}

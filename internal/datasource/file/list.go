package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a list of report names, one per line.
//
// Lines that are empty or start with '#' (after trimming surrounding
// whitespace) are skipped, so list files can carry comments and blank
// separators. Order is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}

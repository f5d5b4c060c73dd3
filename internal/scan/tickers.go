package scan

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// NormalizeTickers uppercases, trims, strips a leading '$' and drops duplicates
func NormalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// LoadTickers reads one ticker per line (or comma separated). '#' starts a comment.
func LoadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers file: %w", err)
	}
	defer f.Close()

	var tickers []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		tickers = append(tickers, strings.Split(line, ",")...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tickers file: %w", err)
	}

	return NormalizeTickers(tickers), nil
}

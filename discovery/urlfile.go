package discovery

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadURLList reads article URLs from a file with one URL per line. Blank
// lines and lines starting with # are ignored. URLs are deduplicated in file
// order and cut to limit when limit is positive. The built-in article
// heuristics are not applied: the list is taken as given.
func ReadURLList(path string, limit int) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &DiscoveryError{Location: path, Err: ErrEmptyLocation}
	}
	if limit < 0 {
		return nil, &DiscoveryError{Location: path, Err: ErrInvalidLimit}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DiscoveryError{Location: path, Err: fmt.Errorf("failed to open URL list: %w", err)}
	}
	defer f.Close()

	c := newCollector(limit, urlMatcher{acceptAll: true})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() && !c.full() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.add(line, nil, true)
	}
	if err := scanner.Err(); err != nil {
		return nil, &DiscoveryError{Location: path, Err: fmt.Errorf("failed to read URL list: %w", err)}
	}

	if len(c.urls) == 0 {
		return nil, &DiscoveryError{Location: path, Err: ErrNoArticles}
	}

	return c.urls, nil
}

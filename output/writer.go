// Package output persists scraped articles and URL lists to disk.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pevans/moodscrape/article"
)

// PersistenceError reports that the output file could not be written. The
// destination is left as it was before the attempt.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Write serializes articles, in order, as an indented JSON array to path.
// An empty or nil slice writes []. The destination is replaced only once
// the full document has been written.
func Write(articles []article.Article, path string) error {
	if articles == nil {
		articles = []article.Article{}
	}

	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(articles); err != nil {
			return fmt.Errorf("failed to encode articles: %w", err)
		}
		return nil
	})
}

// WriteURLs writes urls to path, one per line.
func WriteURLs(urls []string, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		for _, u := range urls {
			if _, err := fmt.Fprintln(w, u); err != nil {
				return fmt.Errorf("failed to write URL: %w", err)
			}
		}
		return nil
	})
}

// Read loads an article file written by Write.
func Read(path string) ([]article.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	var articles []article.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse articles: %w", err)
	}

	return articles, nil
}

// writeAtomic writes through a temp file in the destination directory and
// renames it over path. On any failure the temp file is removed.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return &PersistenceError{Path: path, Err: fmt.Errorf("output path is empty")}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = write(buf); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err = buf.Flush(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	// CreateTemp uses 0600; output files are meant to be shared
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	return nil
}

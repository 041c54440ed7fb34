// Package corpus supplies documents and stop-word lists to the index
// builder from the filesystem. The index retains only derived statistics,
// so the document identifier doubles as the path used to re-read the text
// for display.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document pairs an identifier with its raw text. The identifier is the
// document's absolute file path.
type Document struct {
	ID   string
	Text string
}

// LoadDir reads every regular file in dir as one document. The engine has
// no meaningful degraded mode without the full corpus, so any unreadable
// entry is an error.
func LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("resolving document path %s: %w", entry.Name(), err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", path, err)
		}
		docs = append(docs, Document{ID: path, Text: string(data)})
	}
	return docs, nil
}

// LoadStopWords reads a stop-word list with one word per line. Words are
// lower-cased and blank lines are skipped.
func LoadStopWords(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stop-word list %s: %w", path, err)
	}
	words := make(map[string]struct{})
	for line := range strings.Lines(string(data)) {
		word := strings.ToLower(strings.TrimSpace(line))
		if word == "" {
			continue
		}
		words[word] = struct{}{}
	}
	return words, nil
}

// ReadDocument re-reads the full text of an indexed document by its
// identifier.
func ReadDocument(id string) (string, error) {
	data, err := os.ReadFile(id)
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", id, err)
	}
	return string(data), nil
}

// Package faq holds the FAQ data model and flattens the grouped-by-category
// dataset into an ordered corpus.
package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrValidation marks an empty or malformed record or request.
var ErrValidation = errors.New("validation failed")

// Group is one category of the source file.
type Group struct {
	Category string `json:"kategori"`
	FAQ      []Item `json:"faq"`
}

// Item is a question/answer pair inside a Group.
type Item struct {
	Question string `json:"pertanyaan"`
	Answer   string `json:"jawaban"`
}

// Record is one retrievable FAQ unit.
type Record struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate reports whether all fields are non-empty after trimming.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Category) == "":
		return fmt.Errorf("%w: empty category", ErrValidation)
	case strings.TrimSpace(r.Question) == "":
		return fmt.Errorf("%w: empty question", ErrValidation)
	case strings.TrimSpace(r.Answer) == "":
		return fmt.Errorf("%w: empty answer", ErrValidation)
	}
	return nil
}

// Corpus is the flattened, order-preserving record list. A record's position is its point id.
type Corpus []Record

// Questions returns the embeddable text of every record, in corpus order.
func (c Corpus) Questions() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Question
	}
	return out
}

// Flatten turns category groups into a corpus, preserving category-then-item order.
// Fields are trimmed; records with an empty field are dropped and counted in skipped.
// Duplicate questions are kept.
func Flatten(groups []Group) (corpus Corpus, skipped int) {
	corpus = make(Corpus, 0, countItems(groups))
	for _, g := range groups {
		category := strings.TrimSpace(g.Category)
		for _, item := range g.FAQ {
			rec := Record{
				Category: category,
				Question: strings.TrimSpace(item.Question),
				Answer:   strings.TrimSpace(item.Answer),
			}
			if rec.Validate() != nil {
				skipped++
				continue
			}
			corpus = append(corpus, rec)
		}
	}
	return corpus, skipped
}

func countItems(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.FAQ)
	}
	return n
}

// Decode reads the JSON source format: an array of {kategori, faq: [{pertanyaan, jawaban}]}.
func Decode(r io.Reader) ([]Group, error) {
	var groups []Group
	dec := json.NewDecoder(r)
	if err := dec.Decode(&groups); err != nil {
		return nil, fmt.Errorf("decode faq json: %w", err)
	}
	return groups, nil
}

// LoadFile reads and decodes a FAQ JSON file.
func LoadFile(path string) ([]Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open faq file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// WriteFile writes groups as indented UTF-8 JSON, creating parent directories as needed.
func WriteFile(path string, groups []Group) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("encode faq json: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write faq file: %w", err)
	}
	return nil
}

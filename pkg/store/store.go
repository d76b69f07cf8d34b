// Package store writes extracted filing text to per-company directories,
// with deterministic filenames derived from the filing's metadata.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/saranrapjs/edgartext/pkg/edgar"
)

// Store persists cleaned filings on disk. Annual and quarterly filings may
// go under separate roots or share one; a filing type with no configured
// root cannot be written.
type Store struct {
	root10K string
	root10Q string
	log     *zap.Logger

	written int64
}

// New creates a store with separate roots per filing type. Either root may
// be empty, but not both. The roots are created up front so a misconfigured
// output location fails the run before any network work happens.
func New(root10K, root10Q string, logger *zap.Logger) (*Store, error) {
	if root10K == "" && root10Q == "" {
		return nil, errors.New("store needs at least one output root")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, root := range []string{root10K, root10Q} {
		if root == "" {
			continue
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output root %s: %w", root, err)
		}
	}

	return &Store{root10K: root10K, root10Q: root10Q, log: logger}, nil
}

// NewShared creates a store writing both filing types under one root.
func NewShared(root string, logger *zap.Logger) (*Store, error) {
	return New(root, root, logger)
}

// Filename derives the deterministic output name for one filing:
// 10K-{SYMBOL}-{year}.txt for annual filings, 10Q-{SYMBOL}-Q{quarter}{year}.txt
// for quarterly ones. Two filings for the same company and period map to the
// same name, so a rerun overwrites rather than duplicates.
func Filename(symbol string, record edgar.FilingRecord) (string, error) {
	symbol = strings.ToUpper(symbol)

	year, ok := record.FilingYear()
	if !ok {
		return "", fmt.Errorf("filing %s has unusable filing date %q", record.AccessionNumber, record.FilingDate)
	}

	switch edgar.FilingType(record.Form) {
	case edgar.Form10K:
		return fmt.Sprintf("10K-%s-%d.txt", symbol, year), nil
	case edgar.Form10Q:
		quarter, ok := record.Quarter()
		if !ok {
			return "", fmt.Errorf("filing %s has unusable report date %q", record.AccessionNumber, record.ReportDate)
		}
		return fmt.Sprintf("10Q-%s-Q%d%d.txt", symbol, quarter, year), nil
	}
	return "", fmt.Errorf("no filename scheme for form %q", record.Form)
}

// Write persists one filing's cleaned text under
// {root}/{SYMBOL}/original/{filename}, overwriting any earlier run's file.
// Returns the path written.
func (s *Store) Write(symbol string, record edgar.FilingRecord, text string) (string, error) {
	root, err := s.rootFor(edgar.FilingType(record.Form))
	if err != nil {
		return "", err
	}

	filename, err := Filename(symbol, record)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(root, strings.ToUpper(symbol), "original")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	chars := utf8.RuneCountInString(text)
	s.written += int64(chars)
	s.log.Info("saved filing",
		zap.String("path", path),
		zap.Int("chars", chars))
	return path, nil
}

// CharactersWritten totals the text written so far, for run summaries.
func (s *Store) CharactersWritten() int64 {
	return s.written
}

func (s *Store) rootFor(form edgar.FilingType) (string, error) {
	switch form {
	case edgar.Form10K:
		if s.root10K != "" {
			return s.root10K, nil
		}
	case edgar.Form10Q:
		if s.root10Q != "" {
			return s.root10Q, nil
		}
	}
	return "", fmt.Errorf("no output root configured for form %q", form)
}

// Package ratetable loads and serves the year-scoped statutory constants.
package ratetable

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/taxlab/ktax/internal/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// Store is a read-only, year-keyed set of validated rate tables. It is safe for
// concurrent use because nothing mutates it after construction.
type Store struct {
	tables      map[int]*domain.RateTable
	defaultYear int
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded tables. The embedded data
// is parsed and validated once per process.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadEmbedded()
	})
	return defaultStore, defaultErr
}

// MustDefault is Default for callers that cannot proceed without the
// embedded tables.
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded rate tables are invalid: %v", err))
	}
	return s
}

// LoadEmbedded parses every table shipped with the binary
func LoadEmbedded() (*Store, error) {
	entries, err := fs.ReadDir(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded rate tables: %w", err)
	}
	var tables []*domain.RateTable
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := embedded.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded table %s: %w", e.Name(), err)
		}
		rt, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded table %s: %w", e.Name(), err)
		}
		tables = append(tables, rt)
	}
	return NewStore(tables...)
}

// NewStore validates each table and indexes it by tax year. The latest year
// becomes the default.
func NewStore(tables ...*domain.RateTable) (*Store, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("at least one rate table is required")
	}
	s := &Store{tables: make(map[int]*domain.RateTable, len(tables))}
	for _, rt := range tables {
		if err := Validate(rt); err != nil {
			return nil, fmt.Errorf("rate table %d validation failed: %w", rt.Metadata.TaxYear, err)
		}
		year := rt.Metadata.TaxYear
		if _, dup := s.tables[year]; dup {
			return nil, fmt.Errorf("duplicate rate table for tax year %d", year)
		}
		s.tables[year] = rt
		if year > s.defaultYear {
			s.defaultYear = year
		}
	}
	return s, nil
}

// WithOverride returns a new store where table replaces (or adds) its year.
// The receiver is left untouched.
func (s *Store) WithOverride(table *domain.RateTable) (*Store, error) {
	merged := lo.Values(s.tables)
	merged = lo.Filter(merged, func(rt *domain.RateTable, _ int) bool {
		return rt.Metadata.TaxYear != table.Metadata.TaxYear
	})
	return NewStore(append(merged, table)...)
}

// Table returns the table for year. Year 0 selects the default year.
func (s *Store) Table(year int) (*domain.RateTable, error) {
	if year == 0 {
		year = s.defaultYear
	}
	rt, ok := s.tables[year]
	if !ok {
		return nil, domain.NewUnsupportedTaxYear(year)
	}
	return rt, nil
}

// DefaultYear is the year used when an input leaves TaxYear unset
func (s *Store) DefaultYear() int { return s.defaultYear }

// Years lists the configured years in ascending order
func (s *Store) Years() []int {
	years := lo.Keys(s.tables)
	sort.Ints(years)
	return years
}

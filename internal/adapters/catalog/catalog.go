package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tg-support-bot/internal/domain"
)

// MaxCategoryLen длина категории, при которой callback data "solution_<category>"
// укладывается в лимит Telegram в 64 байта.
const MaxCategoryLen = 55

var (
	// ErrEmptyCatalog возвращается, если в каталоге нет ни одной записи.
	ErrEmptyCatalog = errors.New("catalog: no records")
	// ErrInvalidRecord возвращается для записи без категории, ключевых слов или текста.
	ErrInvalidRecord = errors.New("catalog: invalid record")
)

// Static неизменяемый каталог в памяти.
type Static struct {
	records    []domain.SolutionRecord
	byCategory map[string]int
}

// New проверяет записи и строит каталог. Записи копируются.
func New(records []domain.SolutionRecord) (*Static, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Static{
		records:    make([]domain.SolutionRecord, 0, len(records)),
		byCategory: make(map[string]int, len(records)),
	}
	for i, rec := range records {
		rec.Category = strings.TrimSpace(rec.Category)
		if rec.Category == "" || strings.TrimSpace(rec.Solution) == "" {
			return nil, fmt.Errorf("%w: #%d", ErrInvalidRecord, i)
		}
		if len(rec.Category) > MaxCategoryLen {
			return nil, fmt.Errorf("%w: category %q is longer than %d bytes", ErrInvalidRecord, rec.Category, MaxCategoryLen)
		}
		keywords := make([]string, 0, len(rec.Keywords))
		for _, kw := range rec.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %q has no keywords", ErrInvalidRecord, rec.Category)
		}
		if _, dup := c.byCategory[rec.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidRecord, rec.Category)
		}
		rec.Keywords = keywords
		if rec.Title == "" {
			rec.Title = rec.Category
		}
		c.byCategory[rec.Category] = len(c.records)
		c.records = append(c.records, rec)
	}
	return c, nil
}

// MustDefault возвращает встроенный каталог.
func MustDefault() *Static {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}

// Load читает каталог из YAML-файла. Пустой путь означает встроенный каталог.
func Load(path string) (*Static, error) {
	if strings.TrimSpace(path) == "" {
		return New(Defaults())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML со списком записей (ключ solutions).
func Parse(data []byte) (*Static, error) {
	var doc struct {
		Solutions []domain.SolutionRecord `yaml:"solutions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Solutions)
}

// Records возвращает копию записей в порядке каталога.
func (c *Static) Records() []domain.SolutionRecord {
	out := make([]domain.SolutionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Lookup ищет запись по категории.
func (c *Static) Lookup(category string) (domain.SolutionRecord, bool) {
	i, ok := c.byCategory[category]
	if !ok {
		return domain.SolutionRecord{}, false
	}
	return c.records[i], true
}

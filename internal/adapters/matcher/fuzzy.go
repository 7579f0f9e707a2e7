package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tg-support-bot/internal/domain"
)

const (
	// Threshold максимальная непохожесть (0 — точное совпадение, 1 — ничего общего).
	Threshold = 0.4
	// locationDistance штраф за смещение вхождения от начала ключевого слова.
	locationDistance = 100
	// maxQueryRunes ограничивает длину запроса, поиск квадратичен по длине.
	maxQueryRunes = 256
	// minFuzzyKeyword короче этого ключевые слова ищутся в запросе только целиком.
	minFuzzyKeyword = 5
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

type keyword struct {
	text  string
	runes []rune
	words int
}

type entry struct {
	record   domain.SolutionRecord
	keywords []keyword
}

// Fuzzy индекс приблизительного поиска по ключевым словам каталога.
type Fuzzy struct {
	entries []entry
}

// NewFuzzy строит индекс в порядке записей каталога.
func NewFuzzy(records []domain.SolutionRecord) *Fuzzy {
	f := &Fuzzy{entries: make([]entry, 0, len(records))}
	for _, rec := range records {
		e := entry{record: rec}
		for _, kw := range rec.Keywords {
			if n := Normalize(kw); n != "" {
				e.keywords = append(e.keywords, keyword{text: n, runes: []rune(n), words: len(strings.Fields(n))})
			}
		}
		f.entries = append(f.entries, e)
	}
	return f
}

// Normalize приводит текст к нижнему регистру и схлопывает пробелы.
func Normalize(s string) string {
	s = cases.Lower(language.Und).String(s)
	s = apostrophes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Search возвращает все записи с оценкой ниже порога, лучшие первыми.
// При равных оценках сохраняется порядок каталога.
func (f *Fuzzy) Search(query string) []domain.Match {
	q := []rune(Normalize(query))
	if len(q) == 0 {
		return nil
	}
	if len(q) > maxQueryRunes {
		q = q[:maxQueryRunes]
	}
	words := tokens(string(q))
	var matches []domain.Match
	for _, e := range f.entries {
		score, hitKeyword, hit := 1.0, "", false
		best := 1.0
		for _, kw := range e.keywords {
			s := keywordScore(q, words, kw)
			if s >= Threshold {
				continue
			}
			if !hit {
				score, hit = s, true
			} else {
				score *= s
			}
			if s < best {
				best, hitKeyword = s, kw.text
			}
		}
		if !hit {
			continue
		}
		matches = append(matches, domain.Match{Record: e.record, Keyword: hitKeyword, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	return matches
}

// Best возвращает лучшее совпадение, если оно укладывается в порог.
func (f *Fuzzy) Best(query string) (domain.Match, bool) {
	matches := f.Search(query)
	if len(matches) == 0 || matches[0].Score >= Threshold {
		return domain.Match{}, false
	}
	return matches[0], true
}

// FindSolution возвращает текст решения лучшего совпадения.
func (f *Fuzzy) FindSolution(query string) (string, bool) {
	m, ok := f.Best(query)
	if !ok {
		return "", false
	}
	return m.Record.Solution, true
}

// keywordScore берёт лучшую из двух оценок: запрос внутри ключевого слова
// (со штрафом за позицию) и ключевое слово среди слов запроса.
func keywordScore(query []rune, words []string, kw keyword) float64 {
	m := float64(len(query))
	inKeyword := bestOccurrence(query, kw.runes, func(errs, pos int) float64 {
		return float64(errs)/m + float64(pos)/locationDistance
	})
	if inKeyword == 0 {
		return 0
	}
	return math.Min(inKeyword, phraseScore(words, kw))
}

// phraseScore сравнивает ключевое слово с группами соседних слов запроса.
// Группа берётся целыми словами, поэтому часть слова не засчитывается.
func phraseScore(words []string, kw keyword) float64 {
	k := len(kw.runes)
	maxErr := 0
	if k >= minFuzzyKeyword {
		maxErr = maxErrors(k)
	}
	best := 1.0
	for n := max(1, kw.words-1); n <= kw.words+1; n++ {
		for i := 0; i+n <= len(words); i++ {
			errs := levenshtein.ComputeDistance(kw.text, strings.Join(words[i:i+n], " "))
			if errs > maxErr {
				continue
			}
			if s := float64(errs) / float64(k); s < best {
				best = s
			}
		}
	}
	return best
}

// tokens делит нормализованный запрос на слова без краевой пунктуации.
func tokens(q string) []string {
	fields := strings.Fields(q)
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// bestOccurrence перебирает подстроки text, которые могут отличаться от
// pattern не более чем на допустимое число правок, и возвращает минимальную
// оценку. Если вхождений нет, результат равен 1.
func bestOccurrence(pattern, text []rune, score func(errs, pos int) float64) float64 {
	best := 1.0
	m := len(pattern)
	if m == 0 {
		return best
	}
	maxErr := maxErrors(m)
	minLen := m - maxErr
	if minLen < 1 {
		minLen = 1
	}
	p := string(pattern)
	for i := 0; i+minLen <= len(text); i++ {
		for l := minLen; l <= m+maxErr && i+l <= len(text); l++ {
			errs := levenshtein.ComputeDistance(p, string(text[i:i+l]))
			if errs > maxErr {
				continue
			}
			if s := score(errs, i); s < best {
				best = s
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

// maxErrors наибольшее число правок e, при котором e/m ещё меньше порога.
func maxErrors(m int) int {
	e := int(math.Ceil(Threshold*float64(m)-1e-9)) - 1
	if e < 0 {
		return 0
	}
	return e
}

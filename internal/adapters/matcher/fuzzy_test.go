package matcher

import (
	"strings"
	"testing"

	"tg-support-bot/internal/adapters/catalog"
	"tg-support-bot/internal/domain"
)

func TestEveryKeywordFindsItsCategory(t *testing.T) {
	records := catalog.Defaults()
	f := NewFuzzy(records)
	for _, rec := range records {
		for _, kw := range rec.Keywords {
			got, ok := f.FindSolution(kw)
			if !ok {
				t.Fatalf("keyword %q: expected a match", kw)
			}
			if got != rec.Solution {
				t.Fatalf("keyword %q: expected %s solution", kw, rec.Category)
			}
		}
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	f := NewFuzzy(catalog.Defaults())
	for _, q := range []string{"PASSWORD", "Refund", "GlItCh", "Can't Login"} {
		lower, ok := f.Best(strings.ToLower(q))
		if !ok {
			t.Fatalf("%q: expected match", q)
		}
		upper, ok := f.Best(q)
		if !ok {
			t.Fatalf("%q: expected match", q)
		}
		if lower.Record.Category != upper.Record.Category || lower.Score != upper.Score {
			t.Fatalf("%q: case changed the result", q)
		}
	}
}

func TestNoOverlapHasNoMatch(t *testing.T) {
	f := NewFuzzy(catalog.Defaults())
	for _, q := range []string{"qqq zzz", "xyz", "", "   "} {
		if _, ok := f.FindSolution(q); ok {
			t.Fatalf("%q: did not expect a match", q)
		}
	}
}

func TestSmallTalkHasNoMatch(t *testing.T) {
	f := NewFuzzy(catalog.Defaults())
	for _, q := range []string{
		"okay",
		"good day",
		"hello today",
		"where is paris",
		"thanks but no",
		"big house",
		"update my profile photo",
		"how are you",
		"thank you",
		"see you tomorrow",
	} {
		if m, ok := f.Best(q); ok {
			t.Fatalf("%q: unexpected match %s via %q (%.3f)", q, m.Record.Category, m.Keyword, m.Score)
		}
	}
}

func TestShortKeywordNeedsWholeWord(t *testing.T) {
	f := NewFuzzy([]domain.SolutionRecord{{Category: "payment", Keywords: []string{"pay"}, Solution: "s"}})
	if _, ok := f.Best("please pay now"); !ok {
		t.Fatal("expected whole word to match")
	}
	for _, q := range []string{"okay", "paris", "pad"} {
		if _, ok := f.Best("hello " + q); ok {
			t.Fatalf("%q: part of a word must not match a short keyword", q)
		}
	}
}

func TestTokens(t *testing.T) {
	got := tokens("password? (login) can't - ok")
	want := []string{"password", "login", "can't", "ok"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestSentenceAndTypos(t *testing.T) {
	f := NewFuzzy(catalog.Defaults())
	cases := map[string]string{
		"I forgot my password":     "login",
		"pasword":                  "login",
		"refnd":                    "payment",
		"my bkash transfer failed": "payment",
		"the app is not working":   "technical",
		"i can’t login":            "login",
		"my payment failed":        "payment",
		"password?":                "login",
		"logn":                     "login",
	}
	for q, want := range cases {
		m, ok := f.Best(q)
		if !ok {
			t.Fatalf("%q: expected match", q)
		}
		if m.Record.Category != want {
			t.Fatalf("%q: expected %s, got %s (%.3f)", q, want, m.Record.Category, m.Score)
		}
		if m.Score >= Threshold {
			t.Fatalf("%q: score %.3f is over the threshold", q, m.Score)
		}
	}
}

func TestTieKeepsCatalogOrder(t *testing.T) {
	f := NewFuzzy([]domain.SolutionRecord{
		{Category: "first", Keywords: []string{"alpha"}, Solution: "one"},
		{Category: "second", Keywords: []string{"alpha"}, Solution: "two"},
	})
	m, ok := f.Best("alpha")
	if !ok {
		t.Fatal("expected match")
	}
	if m.Record.Category != "first" {
		t.Fatalf("expected first record, got %s", m.Record.Category)
	}
	if got := f.Search("alpha"); len(got) != 2 || got[1].Record.Category != "second" {
		t.Fatalf("expected both records in catalog order, got %+v", got)
	}
}

func TestSearchSortedByScore(t *testing.T) {
	f := NewFuzzy(catalog.Defaults())
	res := f.Search("password")
	if len(res) == 0 {
		t.Fatal("expected results")
	}
	for i := 1; i < len(res); i++ {
		if res[i-1].Score > res[i].Score {
			t.Fatalf("results not sorted: %v", res)
		}
	}
	if res[0].Keyword != "password" || res[0].Score != 0 {
		t.Fatalf("unexpected best result %+v", res[0])
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Can’T \n  LOGIN "); got != "can't login" {
		t.Fatalf("unexpected normalization %q", got)
	}
}

func TestMaxErrors(t *testing.T) {
	cases := map[int]int{1: 0, 2: 0, 3: 1, 5: 1, 6: 2, 10: 3}
	for m, want := range cases {
		if got := maxErrors(m); got != want {
			t.Fatalf("maxErrors(%d) = %d, want %d", m, got, want)
		}
	}
}

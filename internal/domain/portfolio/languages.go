package portfolio

import "sort"

// LanguageTotal is one row of the aggregated language usage
type LanguageTotal struct {
	Language    string `json:"language"`
	LinesOfCode int    `json:"lines_of_code"`
}

// TopLanguages sums line counts per language across all periods and returns
// the n largest, descending. Ties are ordered by language name. n <= 0 returns all.
func TopLanguages(usage LanguageUsage, n int) []LanguageTotal {
	totals := make(map[string]int)
	for _, period := range usage {
		for lang, lines := range period {
			totals[lang] += lines
		}
	}

	out := make([]LanguageTotal, 0, len(totals))
	for lang, lines := range totals {
		out = append(out, LanguageTotal{Language: lang, LinesOfCode: lines})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LinesOfCode != out[j].LinesOfCode {
			return out[i].LinesOfCode > out[j].LinesOfCode
		}
		return out[i].Language < out[j].Language
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

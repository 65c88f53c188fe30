package evaluation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorPattern = regexp.MustCompile(`[\s_\-]+`)
	familyPattern    = regexp.MustCompile(`^(NOTA|CATEGORIA) ?(\d{4})?$`)
)

// foldHeader trims, strips accents, upper-cases and collapses separators so that
// "Sub-área", "SUB_AREA" and "sub area" compare equal.
func foldHeader(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	folded = separatorPattern.ReplaceAllString(strings.TrimSpace(folded), " ")
	return strings.ToUpper(folded)
}

type familyColumn struct {
	index int
	name  string
	year  int
}

func scanFamilies(header []string) (scores, categories []familyColumn) {
	for i, name := range header {
		match := familyPattern.FindStringSubmatch(foldHeader(name))
		if match == nil {
			continue
		}
		col := familyColumn{index: i, name: strings.TrimSpace(name)}
		if match[2] != "" {
			col.year, _ = strconv.Atoi(match[2])
		}
		if match[1] == "NOTA" {
			scores = append(scores, col)
		} else {
			categories = append(categories, col)
		}
	}
	return scores, categories
}

// rankFamily orders candidates by priority: the pinned year, then the most recent
// year, then the bare column. Ties keep header order.
func rankFamily(cols []familyColumn, pinned int) []familyColumn {
	ranked := append([]familyColumn(nil), cols...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if pinned > 0 && (a.year == pinned) != (b.year == pinned) {
			return a.year == pinned
		}
		return a.year > b.year
	})
	return ranked
}

func matchFamily(cols []familyColumn, pinned int) (FieldMatch, bool) {
	if len(cols) == 0 {
		return noMatch, false
	}
	ranked := rankFamily(cols, pinned)
	match := FieldMatch{Column: ranked[0].name, Index: ranked[0].index}
	for _, col := range ranked {
		match.Candidates = append(match.Candidates, col.name)
	}
	return match, true
}

func resolveColumns(header []string, pinnedYear int, rules Rules) (Resolution, error) {
	scores, categories := scanFamilies(header)
	scoreMatch, ok := matchFamily(scores, pinnedYear)
	if !ok {
		return Resolution{}, &ColumnError{Family: FamilyScore, Header: header}
	}
	categoryMatch, ok := matchFamily(categories, pinnedYear)
	if !ok {
		return Resolution{}, &ColumnError{Family: FamilyCategory, Header: header}
	}

	res := Resolution{
		Score:        scoreMatch,
		Category:     categoryMatch,
		Competencies: map[Competency]FieldMatch{},
	}

	claimed := map[int]bool{}
	for _, col := range scores {
		claimed[col.index] = true
	}
	for _, col := range categories {
		claimed[col.index] = true
	}

	folded := make([]string, len(header))
	for i, name := range header {
		folded[i] = foldHeader(name)
	}

	field := func(key string) FieldMatch {
		for _, alias := range fieldAliases[key] {
			for i, name := range folded {
				if !claimed[i] && name == alias {
					claimed[i] = true
					return FieldMatch{Column: strings.TrimSpace(header[i]), Index: i}
				}
			}
		}
		return noMatch
	}
	res.Person = field("person")
	res.Role = field("role")
	res.Direction = field("direction")
	res.Area = field("area")
	res.SubArea = field("subArea")
	res.Evaluator = field("evaluator")
	res.Action = field("action")

	for _, competency := range rules.AllCompetencies() {
		if match, ok := matchCompetency(competency, header, folded, claimed); ok {
			claimed[match.Index] = true
			res.Competencies[competency] = match
		}
	}

	res.History = historyColumns(scores, categories)
	return res, nil
}

// matchCompetency prefers an exact folded match and falls back to the first
// header that contains the competency name.
func matchCompetency(competency Competency, header, folded []string, claimed map[int]bool) (FieldMatch, bool) {
	key := foldHeader(string(competency))
	for i, name := range folded {
		if !claimed[i] && name == key {
			return FieldMatch{Column: strings.TrimSpace(header[i]), Index: i}, true
		}
	}
	for i, name := range folded {
		if !claimed[i] && strings.Contains(name, key) {
			return FieldMatch{Column: strings.TrimSpace(header[i]), Index: i}, true
		}
	}
	return noMatch, false
}

func historyColumns(scores, categories []familyColumn) []HistoryColumns {
	byYear := map[int]*HistoryColumns{}
	for _, col := range scores {
		if col.year == 0 {
			continue
		}
		if _, ok := byYear[col.year]; !ok {
			byYear[col.year] = &HistoryColumns{Year: col.year, Score: col.index, Category: -1}
		}
	}
	for _, col := range categories {
		if col.year == 0 {
			continue
		}
		entry, ok := byYear[col.year]
		if !ok {
			entry = &HistoryColumns{Year: col.year, Score: -1, Category: col.index}
			byYear[col.year] = entry
		} else if entry.Category < 0 {
			entry.Category = col.index
		}
	}
	out := make([]HistoryColumns, 0, len(byYear))
	for _, entry := range byYear {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rules holds the business lookup tables: category aliases, leadership keywords
// and named competency sets.
type Rules struct {
	CategoryAliases    map[string]Category
	LeadershipKeywords []string
	CompetencySets     map[string][]Competency
}

func DefaultRules() Rules {
	aliases := make(map[string]Category, len(Categories)*4)
	for _, category := range Categories {
		for _, variant := range labelVariants(string(category)) {
			aliases[variant] = category
		}
	}
	return Rules{
		CategoryAliases:    aliases,
		LeadershipKeywords: append([]string(nil), DefaultLeadershipKeywords...),
		CompetencySets: map[string][]Competency{
			CompetencySetLeadership:  append([]Competency(nil), LeadershipCompetencies...),
			CompetencySetTransversal: append([]Competency(nil), TransversalCompetencies...),
		},
	}
}

// labelVariants returns the spellings exports use for a canonical label: as is,
// all caps, title case and sentence case. The all-lowercase form is left out.
func labelVariants(label string) []string {
	lower := cases.Lower(language.Spanish).String(label)
	sentence := strings.ToUpper(lower[:1]) + lower[1:]
	return []string{
		label,
		strings.ToUpper(label),
		cases.Title(language.Spanish).String(label),
		sentence,
	}
}

// AddAlias maps an extra raw label onto a canonical category.
func (r *Rules) AddAlias(raw string, category Category) error {
	if !category.Valid() {
		return fmt.Errorf("alias %q targets non-canonical category %q", raw, category)
	}
	key := strings.TrimSpace(raw)
	if key == "" {
		return fmt.Errorf("alias for %q is blank", category)
	}
	if r.CategoryAliases == nil {
		r.CategoryAliases = map[string]Category{}
	}
	r.CategoryAliases[key] = category
	return nil
}

func (r Rules) CompetencySet(name string) ([]Competency, bool) {
	set, ok := r.CompetencySets[strings.ToLower(strings.TrimSpace(name))]
	return set, ok
}

// AllCompetencies returns leadership, then transversal, then any other sets by name,
// without duplicates.
func (r Rules) AllCompetencies() []Competency {
	names := make([]string, 0, len(r.CompetencySets))
	for name := range r.CompetencySets {
		if name != CompetencySetLeadership && name != CompetencySetTransversal {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{CompetencySetLeadership, CompetencySetTransversal}, names...)

	seen := map[Competency]bool{}
	var out []Competency
	for _, name := range names {
		for _, competency := range r.CompetencySets[name] {
			if seen[competency] {
				continue
			}
			seen[competency] = true
			out = append(out, competency)
		}
	}
	return out
}

func (r Rules) orDefault() Rules {
	if r.CategoryAliases == nil && r.CompetencySets == nil && r.LeadershipKeywords == nil {
		return DefaultRules()
	}
	return r
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"perfdash/internal/domain/evaluation"
)

// RulesFile is the on-disk shape of business-rule overrides:
//
//	categoryAliases:
//	  Sobresaliente: Destacado
//	leadershipKeywords: [jefe, jefa, lider]
//	competencySets:
//	  clinical: [Empatía, Seguridad del Paciente]
type RulesFile struct {
	CategoryAliases    map[string]string   `yaml:"categoryAliases"`
	LeadershipKeywords []string            `yaml:"leadershipKeywords"`
	CompetencySets     map[string][]string `yaml:"competencySets"`
}

func LoadRules(path string) (evaluation.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evaluation.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules merges overrides onto the default rules. Aliases and sets are added;
// a non-empty keyword list replaces the defaults.
func ParseRules(data []byte) (evaluation.Rules, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return evaluation.Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	rules := evaluation.DefaultRules()
	for raw, target := range file.CategoryAliases {
		if err := rules.AddAlias(raw, evaluation.Category(strings.TrimSpace(target))); err != nil {
			return evaluation.Rules{}, err
		}
	}
	if len(file.LeadershipKeywords) > 0 {
		rules.LeadershipKeywords = nil
		for _, keyword := range file.LeadershipKeywords {
			if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
				rules.LeadershipKeywords = append(rules.LeadershipKeywords, keyword)
			}
		}
	}
	for name, set := range file.CompetencySets {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return evaluation.Rules{}, fmt.Errorf("competency set name is blank")
		}
		competencies := make([]evaluation.Competency, 0, len(set))
		for _, competency := range set {
			if competency = strings.TrimSpace(competency); competency != "" {
				competencies = append(competencies, evaluation.Competency(competency))
			}
		}
		rules.CompetencySets[key] = competencies
	}
	return rules, nil
}

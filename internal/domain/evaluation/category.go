package evaluation

import (
	"fmt"
	"strings"
)

type CategoryPolicy string

const (
	// CategoryPolicyLenient keeps unmapped labels as they were written.
	CategoryPolicyLenient CategoryPolicy = "lenient"
	// CategoryPolicyMissing drops unmapped labels to a null category.
	CategoryPolicyMissing CategoryPolicy = "missing"
	// CategoryPolicyStrict aborts normalization on the first unmapped label.
	CategoryPolicyStrict CategoryPolicy = "strict"
)

func ParseCategoryPolicy(value string) (CategoryPolicy, error) {
	switch CategoryPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", CategoryPolicyLenient:
		return CategoryPolicyLenient, nil
	case CategoryPolicyMissing:
		return CategoryPolicyMissing, nil
	case CategoryPolicyStrict:
		return CategoryPolicyStrict, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
}

// Valid reports whether c is one of the six canonical values.
func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Ordinal maps No cumple..Excepcional onto 1..5. Pendiente and unknown labels have none.
func (c Category) Ordinal() (float64, bool) {
	value, ok := categoryOrdinals[c]
	return value, ok
}

func (c Category) IsPending() bool {
	return c == CategoryPendiente
}

// Canonicalize strips the raw label and looks it up in the alias dictionary.
func (r Rules) Canonicalize(raw string) (Category, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", true
	}
	if category, ok := r.CategoryAliases[value]; ok {
		return category, true
	}
	return Category(value), false
}

type categoryOutcome int

const (
	categoryBlank categoryOutcome = iota
	categoryMapped
	categoryUnmapped
)

func (r Rules) applyCategory(raw string, policy CategoryPolicy, row int) (Category, categoryOutcome, error) {
	category, ok := r.Canonicalize(raw)
	switch {
	case category == "":
		return "", categoryBlank, nil
	case ok:
		return category, categoryMapped, nil
	}
	switch policy {
	case CategoryPolicyStrict:
		return "", categoryUnmapped, &CategoryError{Row: row, Value: strings.TrimSpace(raw)}
	case CategoryPolicyMissing:
		return "", categoryUnmapped, nil
	default:
		return category, categoryUnmapped, nil
	}
}

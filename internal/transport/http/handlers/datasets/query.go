package datasethandler

import (
	"net/http"
	"strconv"
	"strings"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/evaluation"
	"perfdash/internal/transport/http/shared"
)

var rankOrders = []string{string(analytics.RankTop), string(analytics.RankBottom)}

// parseFilter reads the cross-filter shared by every view. Categories may be
// repeated or comma separated and are mapped through the category aliases.
func parseFilter(r *http.Request, rules evaluation.Rules, v *shared.Validator) analytics.Filter {
	q := r.URL.Query()
	filter := analytics.Filter{
		Direction: q.Get("direction"),
		Area:      q.Get("area"),
		SubArea:   q.Get("subArea"),
		Evaluator: q.Get("evaluator"),
		Person:    q.Get("person"),
		Keywords:  rules.LeadershipKeywords,
	}
	for _, raw := range q["category"] {
		for _, label := range strings.Split(raw, ",") {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			category, _ := rules.Canonicalize(label)
			filter.Categories = append(filter.Categories, category)
		}
	}
	if raw := strings.TrimSpace(q.Get("leaders")); raw != "" {
		leaders, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("leaders", "must be true or false")
		}
		filter.LeadersOnly = leaders
	}
	return filter
}

func parseDimension(r *http.Request, v *shared.Validator) analytics.Dimension {
	raw := r.URL.Query().Get("dimension")
	if strings.TrimSpace(raw) == "" {
		return analytics.DimensionDirection
	}
	dim, err := analytics.ParseDimension(raw)
	v.Check("dimension", err)
	return dim
}

func (h *Handler) parseBase(r *http.Request, v *shared.Validator) analytics.PercentBase {
	raw := r.URL.Query().Get("base")
	if strings.TrimSpace(raw) == "" {
		return h.Base
	}
	base, err := analytics.ParsePercentBase(raw)
	v.Check("base", err)
	return base
}

func (h *Handler) parseRanking(r *http.Request, v *shared.Validator) (analytics.RankOrder, int) {
	q := r.URL.Query()
	v.Enum("order", q.Get("order"), rankOrders, "must be top or bottom")
	order := analytics.RankOrder(strings.ToLower(strings.TrimSpace(q.Get("order"))))
	if order == "" {
		order = analytics.RankTop
	}
	return order, v.Int("n", q.Get("n"), h.RankingN, 1, 500)
}

// currentYear is the year the resolved score column belongs to, or zero when
// the dataset carries no year-suffixed columns.
func (h *Handler) currentYear(table *evaluation.Table) int {
	if h.Year > 0 {
		return h.Year
	}
	if len(table.Years) == 0 {
		return 0
	}
	return table.Years[len(table.Years)-1]
}

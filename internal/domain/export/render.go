package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/evaluation"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownView   = errors.New("unknown export view")
	ErrViewFormat    = errors.New("view is not available in this format")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

type View string

const (
	ViewAll          View = "all"
	ViewRecords      View = "records"
	ViewRanking      View = "ranking"
	ViewGroups       View = "groups"
	ViewDistribution View = "distribution"
	ViewComparison   View = "comparison"
)

// ParseView resolves a view name. Blank picks the format's natural view: every
// sheet for a workbook, the ranking for a PDF and the records otherwise.
func ParseView(value string, format Format) (View, error) {
	view := View(strings.ToLower(strings.TrimSpace(value)))
	if view == "" {
		switch format {
		case FormatXLSX:
			return ViewAll, nil
		case FormatPDF:
			return ViewRanking, nil
		}
		return ViewRecords, nil
	}
	switch view {
	case ViewAll, ViewRecords, ViewRanking, ViewGroups, ViewDistribution, ViewComparison:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, value)
	}
	if format == FormatCSV && view == ViewAll {
		return "", fmt.Errorf("%w: %s as %s", ErrViewFormat, view, format)
	}
	if format == FormatPDF && view != ViewRanking {
		return "", fmt.Errorf("%w: %s as %s", ErrViewFormat, view, format)
	}
	return view, nil
}

// Request is the selection an export is rendered from. Records are already
// filtered; Table supplies the canonical header. Competencies, Group and
// Individual feed the comparison view; a nil predicate leaves its column blank.
type Request struct {
	Title        string
	Table        *evaluation.Table
	Records      []evaluation.Record
	Dimension    analytics.Dimension
	Base         analytics.PercentBase
	Order        analytics.RankOrder
	N            int
	Competencies []evaluation.Competency
	Group        analytics.Predicate
	Individual   analytics.Predicate
}

func (r Request) ranked() []evaluation.Record {
	return analytics.Rank(r.Records, r.Order, r.N)
}

// Sheets builds the tables behind view, in workbook order.
func Sheets(view View, req Request) []Sheet {
	records := func() Sheet { return RecordsSheet("Registros", req.Table, req.Records) }
	ranking := func() Sheet {
		name := "Mejores"
		if req.Order == analytics.RankBottom {
			name = "Peores"
		}
		return RankingSheet(name, req.ranked())
	}
	groups := func() Sheet {
		return GroupsSheet("Grupos", req.Dimension, analytics.GroupBy(req.Records, req.Dimension))
	}
	distribution := func() Sheet {
		return DistributionSheet("Distribución", req.Dimension, analytics.Distribution(req.Records, req.Dimension, req.Base))
	}

	switch view {
	case ViewComparison:
		return []Sheet{ComparisonSheet("Comparación", analytics.Compare(req.Records, req.Competencies, req.Group, req.Individual))}
	case ViewRecords:
		return []Sheet{records()}
	case ViewRanking:
		return []Sheet{ranking()}
	case ViewGroups:
		return []Sheet{groups()}
	case ViewDistribution:
		return []Sheet{distribution()}
	}
	return []Sheet{records(), groups(), distribution(), ranking()}
}

// Render writes view in format to w.
func Render(w io.Writer, format Format, view View, req Request, generatedAt time.Time) error {
	switch format {
	case FormatPDF:
		if view != ViewRanking {
			return fmt.Errorf("%w: %s as %s", ErrViewFormat, view, format)
		}
		return WriteRankingPDF(w, req.Title, generatedAt, req.ranked())
	case FormatXLSX:
		return WriteWorkbook(w, Sheets(view, req)...)
	case FormatCSV:
		if view == ViewAll {
			return fmt.Errorf("%w: %s as %s", ErrViewFormat, view, format)
		}
		return WriteCSV(w, Sheets(view, req)[0])
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FileName derives a download name from the source file name.
func FileName(source string, view View, format Format) string {
	base := source
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(base))
	if base == "" {
		base = "evaluaciones"
	}
	return base + "-" + string(view) + "." + string(format)
}

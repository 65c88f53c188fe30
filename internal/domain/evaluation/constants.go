package evaluation

// Category is the canonical performance tier. Unrecognized labels kept under the
// lenient policy are also carried as Category values; Valid reports which is which.
type Category string

const (
	CategoryExcepcional        Category = "Excepcional"
	CategoryDestacado          Category = "Destacado"
	CategoryCumple             Category = "Cumple"
	CategoryCumpleParcialmente Category = "Cumple Parcialmente"
	CategoryNoCumple           Category = "No cumple"
	CategoryPendiente          Category = "Pendiente"
)

// Categories lists the canonical values in display order: best to worst, then Pendiente.
var Categories = []Category{
	CategoryExcepcional,
	CategoryDestacado,
	CategoryCumple,
	CategoryCumpleParcialmente,
	CategoryNoCumple,
	CategoryPendiente,
}

var categoryOrdinals = map[Category]float64{
	CategoryNoCumple:           1,
	CategoryCumpleParcialmente: 2,
	CategoryCumple:             3,
	CategoryDestacado:          4,
	CategoryExcepcional:        5,
}

// Competency names a rated behavioral dimension.
type Competency string

const (
	CompetencyLiderazgoMagnetico Competency = "Liderazgo Magnético"
	CompetencyFormadorDePersonas Competency = "Formador de Personas"
	CompetencyVisionEstrategica  Competency = "Visión Estratégica"
	CompetencyRedesRelaciones    Competency = "Generación de Redes y Relaciones Efectivas"
	CompetencyHumildad           Competency = "Humildad"
	CompetencyResolutividad      Competency = "Resolutividad"

	CompetencyOrientacionCliente    Competency = "Orientación al Cliente"
	CompetencyTrabajoEquipo         Competency = "Trabajo en Equipo"
	CompetencyCompromiso            Competency = "Compromiso"
	CompetencyComunicacionEfectiva  Competency = "Comunicación Efectiva"
	CompetencyAdaptabilidad         Competency = "Adaptabilidad al Cambio"
	CompetencyOrientacionResultados Competency = "Orientación a Resultados"
)

const (
	CompetencySetLeadership  = "leadership"
	CompetencySetTransversal = "transversal"
)

var LeadershipCompetencies = []Competency{
	CompetencyLiderazgoMagnetico,
	CompetencyFormadorDePersonas,
	CompetencyVisionEstrategica,
	CompetencyRedesRelaciones,
	CompetencyHumildad,
	CompetencyResolutividad,
}

var TransversalCompetencies = []Competency{
	CompetencyOrientacionCliente,
	CompetencyTrabajoEquipo,
	CompetencyCompromiso,
	CompetencyComunicacionEfectiva,
	CompetencyAdaptabilidad,
	CompetencyOrientacionResultados,
}

// DefaultLeadershipKeywords are matched case-insensitively as substrings of the role.
var DefaultLeadershipKeywords = []string{
	"jefe", "jefa",
	"coordinador", "coordinadora",
	"supervisor", "supervisora",
	"subgerente",
	"gerente",
	"director", "directora",
}

// Canonical column headers used when a table is written back out.
const (
	ColumnPerson    = "Evaluado"
	ColumnRole      = "Cargo"
	ColumnDirection = "Dirección"
	ColumnArea      = "Área"
	ColumnSubArea   = "Sub-área"
	ColumnEvaluator = "Evaluador"
	ColumnScore     = "Nota"
	ColumnCategory  = "Categoría"
	ColumnAction    = "Acciones"
)

// Column families and their folded header aliases.
const (
	FamilyScore    = "score"
	FamilyCategory = "category"
)

var fieldAliases = map[string][]string{
	"person":    {"EVALUADO", "NOMBRE EVALUADO", "COLABORADOR", "NOMBRE"},
	"role":      {"CARGO", "PUESTO"},
	"direction": {"DIRECCION"},
	"area":      {"AREA"},
	"subArea":   {"SUB AREA", "SUBAREA"},
	"evaluator": {"EVALUADOR", "NOMBRE EVALUADOR"},
	"action":    {"ACCIONES", "ACCION"},
}

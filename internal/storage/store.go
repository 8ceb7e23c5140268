package storage

import (
	"context"
	"math"
	"time"

	"financas/internal/core"
	"financas/internal/insight"
)

// Pagination is returned alongside every paginated listing.
type Pagination struct {
	Current int64 `json:"current"`
	Pages   int64 `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
}

// NewPagination derives the page count from the total.
func NewPagination(page, limit, total int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	return Pagination{
		Current: page,
		Pages:   int64(math.Ceil(float64(total) / float64(limit))),
		Total:   total,
		Limit:   limit,
	}
}

// GastoFilter narrows expense listings. Zero values mean "no constraint".
type GastoFilter struct {
	UserID    string
	Categoria string
	Tipo      string
	Mes       string
	Ano       int
	Status    string
	Page      int64
	Limit     int64
}

// RendimentoFilter narrows income listings.
type RendimentoFilter struct {
	UserID string
	Tipo   string
	Mes    string
	Ano    int
	Status string
	Page   int64
	Limit  int64
}

// CategoriaStat is one per-category aggregation row.
type CategoriaStat struct {
	Categoria  string       `json:"categoria"`
	Total      float64      `json:"total"`
	Count      int          `json:"count"`
	Media      float64      `json:"media"`
	Max        float64      `json:"max"`
	Min        float64      `json:"min"`
	Percentual float64      `json:"percentual"`
	Gastos     []core.Gasto `json:"gastos,omitempty"`
}

// TipoStat is one per-income-type aggregation row.
type TipoStat struct {
	Tipo    string  `json:"tipo"`
	Total   float64 `json:"total"`
	Liquido float64 `json:"liquido"`
	Count   int     `json:"count"`
	Media   float64 `json:"media"`
}

// GastoStats is the full per-category breakdown for a period.
type GastoStats struct {
	Categorias    []CategoriaStat `json:"categorias"`
	TotalGeral    float64         `json:"totalGeral"`
	TotalRegistos int             `json:"totalRegistos"`
}

// RendimentoStats is the per-type breakdown for a period.
type RendimentoStats struct {
	Tipos         []TipoStat `json:"tipos"`
	TotalGeral    float64    `json:"totalGeral"`
	TotalLiquido  float64    `json:"totalLiquido"`
	TotalRegistos int        `json:"totalRegistos"`
}

// Dashboard is the aggregated month overview.
type Dashboard struct {
	Resumo struct {
		TotalGastos      float64 `json:"totalGastos"`
		TotalRendimentos float64 `json:"totalRendimentos"`
		Saldo            float64 `json:"saldo"`
		TotalTransacoes  int     `json:"totalTransacoes"`
	} `json:"resumo"`
	Gastos struct {
		Total        float64         `json:"total"`
		Transacoes   int             `json:"transacoes"`
		Media        float64         `json:"media"`
		PorCategoria []CategoriaStat `json:"porCategoria"`
	} `json:"gastos"`
	Rendimentos struct {
		Total      float64    `json:"total"`
		Liquido    float64    `json:"liquido"`
		Transacoes int        `json:"transacoes"`
		Media      float64    `json:"media"`
		PorTipo    []TipoStat `json:"porTipo"`
	} `json:"rendimentos"`
}

// PeriodTotal is one (mes, ano) bucket in the trends listing.
type PeriodTotal struct {
	Mes   string  `json:"mes"`
	Ano   int     `json:"ano"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Trends groups totals per calendar month over the recent history.
type Trends struct {
	GastosPorMes      []PeriodTotal `json:"gastosPorMes"`
	RendimentosPorMes []PeriodTotal `json:"rendimentosPorMes"`
}

// CategoriesReport is the category analytics payload.
type CategoriesReport struct {
	Categorias      []CategoriaStat `json:"categorias"`
	TotalGeral      float64         `json:"totalGeral"`
	TotalCategorias int             `json:"totalCategorias"`
}

// InsightReport is a materialized engine run for one user and period.
type InsightReport struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"user" json:"user"`
	Mes         string         `bson:"mes" json:"mes"`
	Ano         int            `bson:"ano" json:"ano"`
	Report      insight.Report `bson:"report" json:"report"`
	GeneratedAt time.Time      `bson:"generatedAt" json:"generatedAt"`
}

// GastoStore persists expense records. Reads exclude soft-deleted records.
type GastoStore interface {
	Create(ctx context.Context, g *core.Gasto) error
	GetByID(ctx context.Context, userID, id string) (*core.Gasto, error)
	Update(ctx context.Context, userID, id string, g *core.Gasto) (*core.Gasto, error)
	SoftDelete(ctx context.Context, userID, id string) error
	List(ctx context.Context, f GastoFilter) ([]core.Gasto, Pagination, error)
	ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Gasto, error)
	ListByCategory(ctx context.Context, userID, categoria string, limit int64) ([]core.Gasto, error)
	ListRecurring(ctx context.Context) ([]core.Gasto, error)
	Stats(ctx context.Context, userID, mes string, ano int) (*GastoStats, error)
	Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Gasto, Pagination, error)
}

// RendimentoStore persists income records.
type RendimentoStore interface {
	Create(ctx context.Context, r *core.Rendimento) error
	GetByID(ctx context.Context, userID, id string) (*core.Rendimento, error)
	Update(ctx context.Context, userID, id string, r *core.Rendimento) (*core.Rendimento, error)
	SoftDelete(ctx context.Context, userID, id string) error
	List(ctx context.Context, f RendimentoFilter) ([]core.Rendimento, Pagination, error)
	ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Rendimento, error)
	ListRecurring(ctx context.Context) ([]core.Rendimento, error)
	TotalByPeriod(ctx context.Context, userID, mes string, ano int) (gross, liquido float64, err error)
	Stats(ctx context.Context, userID, mes string, ano int) (*RendimentoStats, error)
	Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Rendimento, Pagination, error)
}

// UserStore persists accounts. GetByEmail returns the record including the
// password hash; every other read is safe to serialize.
type UserStore interface {
	Create(ctx context.Context, u *core.User) error
	GetByID(ctx context.Context, id string) (*core.User, error)
	GetByEmail(ctx context.Context, email string) (*core.User, error)
	Update(ctx context.Context, id string, u *core.User) (*core.User, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context) ([]core.User, error)
}

// FixedCostStore upserts fixed cost lines keyed by (user, mesId, ano, categoria).
type FixedCostStore interface {
	List(ctx context.Context, userID string, ano int) ([]core.FixedCost, error)
	Upsert(ctx context.Context, fc *core.FixedCost) (*core.FixedCost, error)
}

// DaysWorkedStore upserts worked-day records keyed by (user, mesId, ano).
type DaysWorkedStore interface {
	List(ctx context.Context, userID string, ano int) ([]core.DaysWorked, error)
	Upsert(ctx context.Context, dw *core.DaysWorked) (*core.DaysWorked, error)
}

// AnalyticsStore serves the aggregated read models.
type AnalyticsStore interface {
	Dashboard(ctx context.Context, userID, mes string, ano int) (*Dashboard, error)
	Trends(ctx context.Context, userID string, meses int) (*Trends, error)
	Categories(ctx context.Context, userID, mes string, ano int) (*CategoriesReport, error)
}

// ReportStore materializes insight reports, one per (user, mes, ano).
type ReportStore interface {
	Upsert(ctx context.Context, r *InsightReport) error
	Get(ctx context.Context, userID, mes string, ano int) (*InsightReport, error)
}

// Store bundles every repository behind one backend.
type Store interface {
	Gastos() GastoStore
	Rendimentos() RendimentoStore
	Users() UserStore
	FixedCosts() FixedCostStore
	DaysWorked() DaysWorkedStore
	Analytics() AnalyticsStore
	Reports() ReportStore
	Close(ctx context.Context) error
}

package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"financas/internal/core"
)

// MemoryStore is a mutex-guarded in-memory backend. It backs
// DATA_BACKEND=memory and the test suites; semantics mirror the Mongo
// backend, including soft-delete filtering and id validation.
type MemoryStore struct {
	mu          sync.RWMutex
	gastos      map[string]core.Gasto
	rendimentos map[string]core.Rendimento
	users       map[string]core.User
	fixedCosts  map[string]core.FixedCost
	daysWorked  map[string]core.DaysWorked
	reports     map[string]InsightReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		gastos:      make(map[string]core.Gasto),
		rendimentos: make(map[string]core.Rendimento),
		users:       make(map[string]core.User),
		fixedCosts:  make(map[string]core.FixedCost),
		daysWorked:  make(map[string]core.DaysWorked),
		reports:     make(map[string]InsightReport),
	}
}

func (s *MemoryStore) Gastos() GastoStore           { return (*memGastos)(s) }
func (s *MemoryStore) Rendimentos() RendimentoStore { return (*memRendimentos)(s) }
func (s *MemoryStore) Users() UserStore             { return (*memUsers)(s) }
func (s *MemoryStore) FixedCosts() FixedCostStore   { return (*memFixedCosts)(s) }
func (s *MemoryStore) DaysWorked() DaysWorkedStore  { return (*memDaysWorked)(s) }
func (s *MemoryStore) Analytics() AnalyticsStore    { return (*memAnalytics)(s) }
func (s *MemoryStore) Reports() ReportStore         { return (*memReports)(s) }

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// newID mints a hex object id so memory and mongo records look the same on
// the wire.
func newID() string {
	return bson.NewObjectID().Hex()
}

// checkID rejects ids that can never address a stored record, so both
// backends answer a malformed id with the same error.
func checkID(id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidID, id)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ---- gastos ----

type memGastos MemoryStore

func (s *memGastos) Create(ctx context.Context, g *core.Gasto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	g.ID = newID()
	g.DerivePeriod()
	if g.Status == "" {
		g.Status = "ativo"
	}
	g.Lifecycle = core.LifecycleAtivo
	g.CreatedAt = now
	g.UpdatedAt = now
	s.gastos[g.ID] = *g
	return nil
}

func (s *memGastos) get(userID, id string) (core.Gasto, error) {
	g, ok := s.gastos[id]
	if !ok || g.UserID != userID || g.Lifecycle == core.LifecycleExcluido {
		return core.Gasto{}, core.ErrNotFound
	}
	return g, nil
}

func (s *memGastos) GetByID(ctx context.Context, userID, id string) (*core.Gasto, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *memGastos) Update(ctx context.Context, userID, id string, in *core.Gasto) (*core.Gasto, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	in.ID = g.ID
	in.UserID = g.UserID
	in.Lifecycle = g.Lifecycle
	in.CreatedAt = g.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	in.DerivePeriod()
	s.gastos[id] = *in
	out := *in
	return &out, nil
}

func (s *memGastos) SoftDelete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(userID, id)
	if err != nil {
		return err
	}
	g.Lifecycle = core.LifecycleExcluido
	g.UpdatedAt = time.Now().UTC()
	s.gastos[id] = g
	return nil
}

func (s *memGastos) visible(userID string) []core.Gasto {
	var out []core.Gasto
	for _, g := range s.gastos {
		if g.UserID == userID && g.Lifecycle != core.LifecycleExcluido {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Data.After(out[j].Data) })
	return out
}

func paginate[T any](items []T, page, limit int64) ([]T, Pagination) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	total := int64(len(items))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], NewPagination(page, limit, total)
}

func (s *memGastos) List(ctx context.Context, f GastoFilter) ([]core.Gasto, Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mes := core.NormalizeMes(f.Mes)
	var out []core.Gasto
	for _, g := range s.visible(f.UserID) {
		if f.Categoria != "" && string(g.Categoria) != f.Categoria {
			continue
		}
		if f.Tipo != "" && string(g.Tipo) != f.Tipo {
			continue
		}
		if mes != "" && g.Mes != mes {
			continue
		}
		if f.Ano != 0 && g.Ano != f.Ano {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		out = append(out, g)
	}
	page, p := paginate(out, f.Page, f.Limit)
	return page, p, nil
}

func (s *memGastos) ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Gasto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mes = core.NormalizeMes(mes)
	var out []core.Gasto
	for _, g := range s.visible(userID) {
		if g.Mes == mes && g.Ano == ano {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memGastos) ListByCategory(ctx context.Context, userID, categoria string, limit int64) ([]core.Gasto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Gasto
	for _, g := range s.visible(userID) {
		if string(g.Categoria) == categoria {
			out = append(out, g)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memGastos) ListRecurring(ctx context.Context) ([]core.Gasto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Gasto
	for _, g := range s.gastos {
		if g.Lifecycle != core.LifecycleExcluido && g.Recorrente &&
			g.Recorrencia != nil && g.Recorrencia.Ativo {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func gastoStats(gastos []core.Gasto) *GastoStats {
	byCat := make(map[string][]core.Gasto)
	for _, g := range gastos {
		byCat[string(g.Categoria)] = append(byCat[string(g.Categoria)], g)
	}

	stats := &GastoStats{TotalRegistos: len(gastos)}
	for cat, items := range byCat {
		row := CategoriaStat{Categoria: cat, Count: len(items), Min: math.MaxFloat64}
		for _, g := range items {
			row.Total += g.Valor
			if g.Valor > row.Max {
				row.Max = g.Valor
			}
			if g.Valor < row.Min {
				row.Min = g.Valor
			}
		}
		row.Media = round2(row.Total / float64(len(items)))
		stats.TotalGeral += row.Total
		stats.Categorias = append(stats.Categorias, row)
	}
	sort.Slice(stats.Categorias, func(i, j int) bool {
		if stats.Categorias[i].Total != stats.Categorias[j].Total {
			return stats.Categorias[i].Total > stats.Categorias[j].Total
		}
		return stats.Categorias[i].Categoria < stats.Categorias[j].Categoria
	})
	return stats
}

func (s *memGastos) Stats(ctx context.Context, userID, mes string, ano int) (*GastoStats, error) {
	gastos, err := s.ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	return gastoStats(gastos), nil
}

func (s *memGastos) Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Gasto, Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q = strings.ToLower(q)
	var out []core.Gasto
	for _, g := range s.visible(userID) {
		if strings.Contains(strings.ToLower(g.Descricao), q) ||
			strings.Contains(strings.ToLower(g.Observacoes), q) ||
			tagsMatch(g.Tags, q) {
			out = append(out, g)
		}
	}
	records, p := paginate(out, page, limit)
	return records, p, nil
}

func tagsMatch(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// ---- rendimentos ----

type memRendimentos MemoryStore

func (s *memRendimentos) Create(ctx context.Context, r *core.Rendimento) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	r.ID = newID()
	r.DerivePeriod()
	r.ApplyIVA()
	if r.Status == "" {
		r.Status = "confirmado"
	}
	r.Lifecycle = core.LifecycleAtivo
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rendimentos[r.ID] = *r
	return nil
}

func (s *memRendimentos) get(userID, id string) (core.Rendimento, error) {
	r, ok := s.rendimentos[id]
	if !ok || r.UserID != userID || r.Lifecycle == core.LifecycleExcluido {
		return core.Rendimento{}, core.ErrNotFound
	}
	return r, nil
}

func (s *memRendimentos) GetByID(ctx context.Context, userID, id string) (*core.Rendimento, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *memRendimentos) Update(ctx context.Context, userID, id string, in *core.Rendimento) (*core.Rendimento, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	in.ID = r.ID
	in.UserID = r.UserID
	in.Lifecycle = r.Lifecycle
	in.CreatedAt = r.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	in.DerivePeriod()
	in.ApplyIVA()
	s.rendimentos[id] = *in
	out := *in
	return &out, nil
}

func (s *memRendimentos) SoftDelete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(userID, id)
	if err != nil {
		return err
	}
	r.Lifecycle = core.LifecycleExcluido
	r.UpdatedAt = time.Now().UTC()
	s.rendimentos[id] = r
	return nil
}

func (s *memRendimentos) visible(userID string) []core.Rendimento {
	var out []core.Rendimento
	for _, r := range s.rendimentos {
		if r.UserID == userID && r.Lifecycle != core.LifecycleExcluido {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Data.After(out[j].Data) })
	return out
}

func (s *memRendimentos) List(ctx context.Context, f RendimentoFilter) ([]core.Rendimento, Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mes := core.NormalizeMes(f.Mes)
	var out []core.Rendimento
	for _, r := range s.visible(f.UserID) {
		if f.Tipo != "" && string(r.Tipo) != f.Tipo {
			continue
		}
		if mes != "" && r.Mes != mes {
			continue
		}
		if f.Ano != 0 && r.Ano != f.Ano {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	records, p := paginate(out, f.Page, f.Limit)
	return records, p, nil
}

func (s *memRendimentos) ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Rendimento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mes = core.NormalizeMes(mes)
	var out []core.Rendimento
	for _, r := range s.visible(userID) {
		if r.Mes == mes && r.Ano == ano {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memRendimentos) ListRecurring(ctx context.Context) ([]core.Rendimento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Rendimento
	for _, r := range s.rendimentos {
		if r.Lifecycle != core.LifecycleExcluido && r.Recorrente &&
			r.Recorrencia != nil && r.Recorrencia.Ativo {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memRendimentos) TotalByPeriod(ctx context.Context, userID, mes string, ano int) (float64, float64, error) {
	records, err := s.ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return 0, 0, err
	}
	var gross, liquido float64
	for _, r := range records {
		gross += r.Valor
		liquido += r.ValorLiquido
	}
	return gross, liquido, nil
}

func rendimentoStats(records []core.Rendimento) *RendimentoStats {
	byTipo := make(map[string][]core.Rendimento)
	for _, r := range records {
		byTipo[string(r.Tipo)] = append(byTipo[string(r.Tipo)], r)
	}

	stats := &RendimentoStats{TotalRegistos: len(records)}
	for tipo, items := range byTipo {
		row := TipoStat{Tipo: tipo, Count: len(items)}
		for _, r := range items {
			row.Total += r.Valor
			row.Liquido += r.ValorLiquido
		}
		row.Media = round2(row.Total / float64(len(items)))
		stats.TotalGeral += row.Total
		stats.TotalLiquido += row.Liquido
		stats.Tipos = append(stats.Tipos, row)
	}
	sort.Slice(stats.Tipos, func(i, j int) bool {
		if stats.Tipos[i].Total != stats.Tipos[j].Total {
			return stats.Tipos[i].Total > stats.Tipos[j].Total
		}
		return stats.Tipos[i].Tipo < stats.Tipos[j].Tipo
	})
	return stats
}

func (s *memRendimentos) Stats(ctx context.Context, userID, mes string, ano int) (*RendimentoStats, error) {
	records, err := s.ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	return rendimentoStats(records), nil
}

func (s *memRendimentos) Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Rendimento, Pagination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q = strings.ToLower(q)
	var out []core.Rendimento
	for _, r := range s.visible(userID) {
		if strings.Contains(strings.ToLower(r.Fonte), q) ||
			strings.Contains(strings.ToLower(r.Descricao), q) {
			out = append(out, r)
		}
	}
	records, p := paginate(out, page, limit)
	return records, p, nil
}

// ---- users ----

type memUsers MemoryStore

func (s *memUsers) Create(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == email {
			return fmt.Errorf("%w: email", core.ErrDuplicate)
		}
	}

	now := time.Now().UTC()
	u.ID = newID()
	u.Email = email
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *memUsers) GetByID(ctx context.Context, id string) (*core.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			out := u
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *memUsers) Update(ctx context.Context, id string, in *core.User) (*core.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	in.ID = u.ID
	in.CreatedAt = u.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	if in.Email == "" {
		in.Email = u.Email
	}
	in.Email = strings.ToLower(in.Email)
	s.users[id] = *in
	out := *in
	return &out, nil
}

func (s *memUsers) Deactivate(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *memUsers) List(ctx context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- fixed costs / days worked ----

type memFixedCosts MemoryStore

func fixedCostKey(userID, mesID string, ano int, categoria string) string {
	return fmt.Sprintf("%s|%s|%d|%s", userID, mesID, ano, categoria)
}

func (s *memFixedCosts) List(ctx context.Context, userID string, ano int) ([]core.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.FixedCost
	for _, fc := range s.fixedCosts {
		if fc.UserID == userID && (ano == 0 || fc.Ano == ano) {
			out = append(out, fc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ano != out[j].Ano {
			return out[i].Ano < out[j].Ano
		}
		return core.MesNumber(out[i].MesID) < core.MesNumber(out[j].MesID)
	})
	return out, nil
}

func (s *memFixedCosts) Upsert(ctx context.Context, fc *core.FixedCost) (*core.FixedCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := fixedCostKey(fc.UserID, fc.MesID, fc.Ano, fc.Categoria)
	if existing, ok := s.fixedCosts[key]; ok {
		fc.ID = existing.ID
		fc.CreatedAt = existing.CreatedAt
	} else {
		fc.ID = newID()
		fc.CreatedAt = now
	}
	fc.UpdatedAt = now
	s.fixedCosts[key] = *fc
	out := *fc
	return &out, nil
}

type memDaysWorked MemoryStore

func daysWorkedKey(userID, mesID string, ano int) string {
	return fmt.Sprintf("%s|%s|%d", userID, mesID, ano)
}

func (s *memDaysWorked) List(ctx context.Context, userID string, ano int) ([]core.DaysWorked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.DaysWorked
	for _, dw := range s.daysWorked {
		if dw.UserID == userID && (ano == 0 || dw.Ano == ano) {
			out = append(out, dw)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ano != out[j].Ano {
			return out[i].Ano < out[j].Ano
		}
		return core.MesNumber(out[i].MesID) < core.MesNumber(out[j].MesID)
	})
	return out, nil
}

func (s *memDaysWorked) Upsert(ctx context.Context, dw *core.DaysWorked) (*core.DaysWorked, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := daysWorkedKey(dw.UserID, dw.MesID, dw.Ano)
	if existing, ok := s.daysWorked[key]; ok {
		dw.ID = existing.ID
		dw.CreatedAt = existing.CreatedAt
	} else {
		dw.ID = newID()
		dw.CreatedAt = now
	}
	dw.UpdatedAt = now
	s.daysWorked[key] = *dw
	out := *dw
	return &out, nil
}

// ---- analytics ----

type memAnalytics MemoryStore

func (s *memAnalytics) Dashboard(ctx context.Context, userID, mes string, ano int) (*Dashboard, error) {
	gastos, err := (*memGastos)(s).ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	rendimentos, err := (*memRendimentos)(s).ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	return buildDashboard(gastos, rendimentos), nil
}

// buildDashboard assembles the overview from period slices; both backends
// funnel through it so the response shape stays identical.
func buildDashboard(gastos []core.Gasto, rendimentos []core.Rendimento) *Dashboard {
	d := &Dashboard{}

	gs := gastoStats(gastos)
	d.Gastos.Total = gs.TotalGeral
	d.Gastos.Transacoes = gs.TotalRegistos
	if gs.TotalRegistos > 0 {
		d.Gastos.Media = round2(gs.TotalGeral / float64(gs.TotalRegistos))
	}
	d.Gastos.PorCategoria = gs.Categorias

	rs := rendimentoStats(rendimentos)
	d.Rendimentos.Total = rs.TotalGeral
	d.Rendimentos.Liquido = rs.TotalLiquido
	d.Rendimentos.Transacoes = rs.TotalRegistos
	if rs.TotalRegistos > 0 {
		d.Rendimentos.Media = round2(rs.TotalGeral / float64(rs.TotalRegistos))
	}
	d.Rendimentos.PorTipo = rs.Tipos

	d.Resumo.TotalGastos = gs.TotalGeral
	d.Resumo.TotalRendimentos = rs.TotalLiquido
	d.Resumo.Saldo = rs.TotalLiquido - gs.TotalGeral
	d.Resumo.TotalTransacoes = gs.TotalRegistos + rs.TotalRegistos
	return d
}

func (s *memAnalytics) Trends(ctx context.Context, userID string, meses int) (*Trends, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gastoBuckets := make(map[[2]int]*PeriodTotal)
	for _, g := range (*memGastos)(s).visible(userID) {
		addPeriodTotal(gastoBuckets, g.Mes, g.Ano, g.Valor)
	}
	rendBuckets := make(map[[2]int]*PeriodTotal)
	for _, r := range (*memRendimentos)(s).visible(userID) {
		addPeriodTotal(rendBuckets, r.Mes, r.Ano, r.ValorLiquido)
	}

	return &Trends{
		GastosPorMes:      recentPeriods(gastoBuckets, meses),
		RendimentosPorMes: recentPeriods(rendBuckets, meses),
	}, nil
}

func addPeriodTotal(buckets map[[2]int]*PeriodTotal, mes string, ano int, valor float64) {
	key := [2]int{ano, core.MesNumber(mes)}
	pt, ok := buckets[key]
	if !ok {
		pt = &PeriodTotal{Mes: mes, Ano: ano}
		buckets[key] = pt
	}
	pt.Total += valor
	pt.Count++
}

// recentPeriods sorts buckets chronologically by (ano, month number) and
// keeps the most recent n.
func recentPeriods(buckets map[[2]int]*PeriodTotal, n int) []PeriodTotal {
	keys := make([][2]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	out := make([]PeriodTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

func (s *memAnalytics) Categories(ctx context.Context, userID, mes string, ano int) (*CategoriesReport, error) {
	gastos, err := (*memGastos)(s).ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	return buildCategoriesReport(gastos), nil
}

func buildCategoriesReport(gastos []core.Gasto) *CategoriesReport {
	stats := gastoStats(gastos)

	byCat := make(map[string][]core.Gasto)
	for _, g := range gastos {
		byCat[string(g.Categoria)] = append(byCat[string(g.Categoria)], g)
	}

	report := &CategoriesReport{
		TotalGeral:      stats.TotalGeral,
		TotalCategorias: len(stats.Categorias),
	}
	for _, row := range stats.Categorias {
		if stats.TotalGeral > 0 {
			row.Percentual = round2(row.Total / stats.TotalGeral * 100)
		}
		row.Gastos = byCat[row.Categoria]
		report.Categorias = append(report.Categorias, row)
	}
	return report
}

// ---- reports ----

type memReports MemoryStore

func reportKey(userID, mes string, ano int) string {
	return fmt.Sprintf("%s|%s|%d", userID, mes, ano)
}

func (s *memReports) Upsert(ctx context.Context, r *InsightReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reportKey(r.UserID, r.Mes, r.Ano)
	if existing, ok := s.reports[key]; ok {
		r.ID = existing.ID
	} else {
		r.ID = newID()
	}
	r.GeneratedAt = time.Now().UTC()
	s.reports[key] = *r
	return nil
}

func (s *memReports) Get(ctx context.Context, userID, mes string, ano int) (*InsightReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[reportKey(userID, mes, ano)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &r, nil
}

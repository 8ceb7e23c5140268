package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"financas/internal/core"
)

const testUser = "64f000000000000000000001"

func newGasto(desc string, valor float64, categoria core.Categoria, data time.Time) *core.Gasto {
	return &core.Gasto{
		UserID:    testUser,
		Descricao: desc,
		Valor:     valor,
		Categoria: categoria,
		Data:      data,
		Tipo:      core.GastoVariavel,
	}
}

func newRendimento(fonte string, valor, iva float64, data time.Time) *core.Rendimento {
	return &core.Rendimento{
		UserID: testUser,
		Fonte:  fonte,
		Valor:  valor,
		IVA:    iva,
		Tipo:   core.RendimentoSalario,
		Data:   data,
	}
}

func TestGastoCreateDerivesPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	g := newGasto("Groceries", 50, core.CategoriaAlimentacao, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err := store.Gastos().Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Gastos().GetByID(ctx, testUser, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Mes != "jan" {
		t.Errorf("mes = %q, want jan", got.Mes)
	}
	if got.Ano != 2025 {
		t.Errorf("ano = %d, want 2025", got.Ano)
	}
	if got.Lifecycle != core.LifecycleAtivo {
		t.Errorf("lifecycle = %q, want ativo", got.Lifecycle)
	}
	if got.Status != "ativo" {
		t.Errorf("status = %q, want ativo", got.Status)
	}
}

func TestGastoUpdateRederivesPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	g := newGasto("Compras", 30, core.CategoriaCasa, time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC))
	if err := store.Gastos().Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := *g
	upd.Data = time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
	got, err := store.Gastos().Update(ctx, testUser, g.ID, &upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Mes != "nov" || got.Ano != 2025 {
		t.Errorf("period = %s/%d, want nov/2025", got.Mes, got.Ano)
	}
	if !got.CreatedAt.Equal(g.CreatedAt) {
		t.Errorf("createdAt changed on update")
	}
}

func TestGastoSoftDeleteExclusion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	keep := newGasto("fica", 10, core.CategoriaOutros, data)
	drop := newGasto("sai", 20, core.CategoriaOutros, data)
	for _, g := range []*core.Gasto{keep, drop} {
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := store.Gastos().SoftDelete(ctx, testUser, drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Gastos().GetByID(ctx, testUser, drop.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}

	records, _, err := store.Gastos().List(ctx, GastoFilter{UserID: testUser})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != keep.ID {
		t.Errorf("list returned %d records, want only the kept one", len(records))
	}

	stats, err := store.Gastos().Stats(ctx, testUser, "mar", 2025)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalGeral != 10 {
		t.Errorf("totalGeral = %v, want 10 (deleted record counted)", stats.TotalGeral)
	}

	// A second delete of the same record is not found.
	if err := store.Gastos().SoftDelete(ctx, testUser, drop.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestGastoInvalidID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Gastos().GetByID(ctx, testUser, "not-a-hex-id"); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestGastoOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	g := newGasto("meu", 15, core.CategoriaLazer, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Gastos().Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	other := "64f000000000000000000002"
	if _, err := store.Gastos().GetByID(ctx, other, g.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user get: err = %v, want ErrNotFound", err)
	}
}

func TestGastoListPaginationInvariant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		g := newGasto("registo", float64(i+1), core.CategoriaOutros, base.AddDate(0, 0, i))
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	for _, tc := range []struct{ page, limit int64 }{{1, 3}, {2, 3}, {3, 3}, {1, 10}, {4, 2}} {
		records, p, err := store.Gastos().List(ctx, GastoFilter{UserID: testUser, Page: tc.page, Limit: tc.limit})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if int64(len(records)) > tc.limit {
			t.Errorf("page %d/%d: %d records exceed limit", tc.page, tc.limit, len(records))
		}
		wantPages := int64(math.Ceil(float64(p.Total) / float64(tc.limit)))
		if p.Pages != wantPages {
			t.Errorf("page %d/%d: pages = %d, want %d", tc.page, tc.limit, p.Pages, wantPages)
		}
		if p.Total != 7 {
			t.Errorf("total = %d, want 7", p.Total)
		}
	}
}

func TestGastoListMesVariants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	g := newGasto("novembro", 42, core.CategoriaCasa, time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC))
	if err := store.Gastos().Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, mes := range []string{"nov", "nov.", "NOV"} {
		records, _, err := store.Gastos().List(ctx, GastoFilter{UserID: testUser, Mes: mes, Ano: 2025})
		if err != nil {
			t.Fatalf("list mes=%q: %v", mes, err)
		}
		if len(records) != 1 {
			t.Errorf("mes=%q: %d records, want 1", mes, len(records))
		}
	}
}

func TestGastoSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	a := newGasto("Jantar no restaurante", 35, core.CategoriaLazer, data)
	b := newGasto("Compras", 20, core.CategoriaAlimentacao, data)
	b.Tags = []string{"restaurante"}
	c := newGasto("Gasolina", 60, core.CategoriaTransporte, data)
	for _, g := range []*core.Gasto{a, b, c} {
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	records, _, err := store.Gastos().Search(ctx, testUser, "RESTAURANTE", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("search returned %d records, want 2", len(records))
	}
}

func TestRendimentoValorLiquido(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	r := newRendimento("Job", 1000, 0.23, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	if err := store.Rendimentos().Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Rendimentos().GetByID(ctx, testUser, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if math.Abs(got.ValorLiquido-770) > 1e-9 {
		t.Errorf("valorLiquido = %v, want 770", got.ValorLiquido)
	}

	// Changing the gross amount recomputes the net amount.
	upd := *got
	upd.Valor = 2000
	after, err := store.Rendimentos().Update(ctx, testUser, r.ID, &upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if math.Abs(after.ValorLiquido-1540) > 1e-9 {
		t.Errorf("valorLiquido after update = %v, want 1540", after.ValorLiquido)
	}
}

func TestRendimentoTotalByPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	for _, valor := range []float64{1000, 500} {
		r := newRendimento("fonte", valor, 0.23, jan)
		if err := store.Rendimentos().Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	gross, liquido, err := store.Rendimentos().TotalByPeriod(ctx, testUser, "jan", 2025)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if gross != 1500 {
		t.Errorf("gross = %v, want 1500", gross)
	}
	if math.Abs(liquido-1155) > 1e-9 {
		t.Errorf("liquido = %v, want 1155", liquido)
	}
}

func TestDashboardExample(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	g := newGasto("Groceries", 50, core.CategoriaAlimentacao, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err := store.Gastos().Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := store.Analytics().Dashboard(ctx, testUser, "jan", 2025)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Resumo.TotalGastos < 50 {
		t.Errorf("totalGastos = %v, want >= 50", d.Resumo.TotalGastos)
	}
	found := false
	for _, row := range d.Gastos.PorCategoria {
		if row.Categoria == "alimentacao" && row.Total >= 50 {
			found = true
		}
	}
	if !found {
		t.Errorf("porCategoria missing alimentacao entry with total >= 50: %+v", d.Gastos.PorCategoria)
	}
}

func TestCategoriesPercentuais(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)

	for _, g := range []*core.Gasto{
		newGasto("mercado", 60, core.CategoriaAlimentacao, data),
		newGasto("cinema", 25, core.CategoriaLazer, data),
		newGasto("comboio", 15, core.CategoriaTransporte, data),
	} {
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	report, err := store.Analytics().Categories(ctx, testUser, "jul", 2025)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if report.TotalGeral != 100 {
		t.Fatalf("totalGeral = %v, want 100", report.TotalGeral)
	}

	var somaTotais, somaPercentuais float64
	for _, row := range report.Categorias {
		somaTotais += row.Total
		somaPercentuais += row.Percentual
		if len(row.Gastos) != row.Count {
			t.Errorf("%s: %d gastos attached, count %d", row.Categoria, len(row.Gastos), row.Count)
		}
	}
	if somaTotais != report.TotalGeral {
		t.Errorf("sum of category totals = %v, want %v", somaTotais, report.TotalGeral)
	}
	if math.Abs(somaPercentuais-100) > 0.05 {
		t.Errorf("sum of percentuais = %v, want ~100", somaPercentuais)
	}
}

func TestCategoriesEmptyPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	report, err := store.Analytics().Categories(ctx, testUser, "jan", 2025)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if report.TotalGeral != 0 || report.TotalCategorias != 0 {
		t.Errorf("empty period report = %+v, want zeros", report)
	}
}

func TestTrendsChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Insert out of order across a year boundary; string month order would
	// put dez before jan.
	dates := []time.Time{
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		g := newGasto("registo", float64(10*(i+1)), core.CategoriaOutros, d)
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	trends, err := store.Analytics().Trends(ctx, testUser, 12)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	want := []struct {
		mes string
		ano int
	}{{"nov", 2024}, {"dez", 2024}, {"jan", 2025}, {"fev", 2025}}
	if len(trends.GastosPorMes) != len(want) {
		t.Fatalf("%d buckets, want %d", len(trends.GastosPorMes), len(want))
	}
	for i, w := range want {
		got := trends.GastosPorMes[i]
		if got.Mes != w.mes || got.Ano != w.ano {
			t.Errorf("bucket %d = %s/%d, want %s/%d", i, got.Mes, got.Ano, w.mes, w.ano)
		}
	}
}

func TestTrendsLimitKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for m := time.January; m <= time.June; m++ {
		g := newGasto("registo", 10, core.CategoriaOutros, time.Date(2025, m, 5, 0, 0, 0, 0, time.UTC))
		if err := store.Gastos().Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	trends, err := store.Analytics().Trends(ctx, testUser, 2)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(trends.GastosPorMes) != 2 {
		t.Fatalf("%d buckets, want 2", len(trends.GastosPorMes))
	}
	if trends.GastosPorMes[0].Mes != "mai" || trends.GastosPorMes[1].Mes != "jun" {
		t.Errorf("buckets = %s, %s; want mai, jun", trends.GastosPorMes[0].Mes, trends.GastosPorMes[1].Mes)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u := &core.User{Name: "Ana", Email: "ana@example.com", Provider: "local"}
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &core.User{Name: "Outra", Email: "ANA@example.com", Provider: "local"}
	if err := store.Users().Create(ctx, dup); !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestUserDeactivate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u := &core.User{Name: "Ana", Email: "ana@example.com", Provider: "local"}
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !u.IsActive {
		t.Fatal("new user should be active")
	}

	if err := store.Users().Deactivate(ctx, u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := store.Users().GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsActive {
		t.Error("user still active after deactivate")
	}
}

func TestFixedCostUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	fc := &core.FixedCost{UserID: testUser, MesID: "jan", Ano: 2025, Categoria: "casa", Valor: 600}
	first, err := store.FixedCosts().Upsert(ctx, fc)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	again := &core.FixedCost{UserID: testUser, MesID: "jan", Ano: 2025, Categoria: "casa", Valor: 650}
	second, err := store.FixedCosts().Upsert(ctx, again)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new record: %s vs %s", second.ID, first.ID)
	}
	if second.Valor != 650 {
		t.Errorf("valor = %v, want 650", second.Valor)
	}

	records, err := store.FixedCosts().List(ctx, testUser, 2025)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("%d records, want 1", len(records))
	}
}

func TestDaysWorkedUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	dw := &core.DaysWorked{UserID: testUser, MesID: "fev", Ano: 2025, Andre: 20, Aline: 18}
	first, err := store.DaysWorked().Upsert(ctx, dw)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	again := &core.DaysWorked{UserID: testUser, MesID: "fev", Ano: 2025, Andre: 21, Aline: 18}
	second, err := store.DaysWorked().Upsert(ctx, again)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new record")
	}
	if second.Andre != 21 {
		t.Errorf("andre = %d, want 21", second.Andre)
	}
}

func TestReportUpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	r := &InsightReport{UserID: testUser, Mes: "jan", Ano: 2025}
	if err := store.Reports().Upsert(ctx, r); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Reports().Get(ctx, testUser, "jan", 2025)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("id mismatch")
	}

	if _, err := store.Reports().Get(ctx, testUser, "fev", 2025); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing report: err = %v, want ErrNotFound", err)
	}
}

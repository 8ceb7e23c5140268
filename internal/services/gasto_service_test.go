package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/storage"
)

func TestGastoService_Create(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewGastoService(store, nil)
	ctx := context.Background()

	g := &core.Gasto{
		UserID:    "64f000000000000000000001",
		Descricao: "Supermercado",
		Valor:     45.30,
		Categoria: core.CategoriaAlimentacao,
		Data:      time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Tipo:      core.GastoVariavel,
	}

	created, err := svc.Create(ctx, g)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should assign an id")
	}
	if created.Mes != "mar" || created.Ano != 2025 {
		t.Errorf("Create() period = %s/%d, want mar/2025", created.Mes, created.Ano)
	}

	got, err := store.Gastos().GetByID(ctx, g.UserID, created.ID)
	if err != nil {
		t.Fatalf("GetByID() after create error = %v", err)
	}
	if got.Descricao != "Supermercado" {
		t.Errorf("stored descricao = %q", got.Descricao)
	}
}

func TestGastoService_CreateValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewGastoService(store, nil)
	ctx := context.Background()

	g := &core.Gasto{
		UserID: "64f000000000000000000001",
		Valor:  -5,
		Data:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	}

	_, err := svc.Create(ctx, g)
	if err == nil {
		t.Fatal("Create() should reject an invalid record")
	}
	if !core.IsValidation(err) {
		t.Errorf("Create() error should be a validation error, got %v", err)
	}

	records, _, err := store.Gastos().List(ctx, storage.GastoFilter{UserID: g.UserID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("invalid record should not be persisted, found %d", len(records))
	}
}

func TestGastoService_Delete(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewGastoService(store, nil)
	ctx := context.Background()

	g := &core.Gasto{
		UserID:    "64f000000000000000000001",
		Descricao: "Cinema",
		Valor:     12,
		Categoria: core.CategoriaLazer,
		Data:      time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Tipo:      core.GastoVariavel,
	}
	if _, err := svc.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, g.UserID, g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Gastos().GetByID(ctx, g.UserID, g.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, g.UserID, g.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRendimentoService_Create(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewRendimentoService(store, nil)
	ctx := context.Background()

	r := &core.Rendimento{
		UserID: "64f000000000000000000001",
		Fonte:  "Empresa XYZ",
		Valor:  1000,
		Tipo:   core.RendimentoSalario,
		Data:   time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
		IVA:    0.23,
	}

	created, err := svc.Create(ctx, r)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ValorLiquido != 770 {
		t.Errorf("ValorLiquido = %v, want 770", created.ValorLiquido)
	}
	if created.Mes != "mar" || created.Ano != 2025 {
		t.Errorf("Create() period = %s/%d, want mar/2025", created.Mes, created.Ano)
	}
}

func TestRendimentoService_Update(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewRendimentoService(store, nil)
	ctx := context.Background()

	r := &core.Rendimento{
		UserID: "64f000000000000000000001",
		Fonte:  "Empresa XYZ",
		Valor:  1000,
		Tipo:   core.RendimentoSalario,
		Data:   time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
		IVA:    0.23,
	}
	if _, err := svc.Create(ctx, r); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	in := *r
	in.Valor = 2000
	updated, err := svc.Update(ctx, r.UserID, r.ID, &in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ValorLiquido != 1540 {
		t.Errorf("ValorLiquido after update = %v, want 1540", updated.ValorLiquido)
	}
}

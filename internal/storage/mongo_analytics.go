package storage

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"financas/internal/core"
)

type mongoAnalytics struct {
	gastos      *mongo.Collection
	rendimentos *mongo.Collection
}

func (s *mongoAnalytics) Dashboard(ctx context.Context, userID, mes string, ano int) (*Dashboard, error) {
	gs, err := (&mongoGastos{coll: s.gastos}).Stats(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}
	rs, err := (&mongoRendimentos{coll: s.rendimentos}).Stats(ctx, userID, mes, ano)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{}
	d.Gastos.Total = gs.TotalGeral
	d.Gastos.Transacoes = gs.TotalRegistos
	if gs.TotalRegistos > 0 {
		d.Gastos.Media = round2(gs.TotalGeral / float64(gs.TotalRegistos))
	}
	d.Gastos.PorCategoria = gs.Categorias

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
	return d, nil
}

func (s *mongoAnalytics) Trends(ctx context.Context, userID string, meses int) (*Trends, error) {
	gastos, err := periodTotals(ctx, s.gastos, userID, "$valor", meses)
	if err != nil {
		return nil, fmt.Errorf("gasto trends: %w", err)
	}
	rendimentos, err := periodTotals(ctx, s.rendimentos, userID, "$valorLiquido", meses)
	if err != nil {
		return nil, fmt.Errorf("rendimento trends: %w", err)
	}
	return &Trends{GastosPorMes: gastos, RendimentosPorMes: rendimentos}, nil
}

// periodTotals groups a collection by (mes, ano) and returns the n most
// recent buckets in chronological order. Month order comes from the
// abbreviation table, not the string sort the month names would give.
func periodTotals(ctx context.Context, coll *mongo.Collection, userID, valueField string, n int) ([]PeriodTotal, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: notDeleted(userID)}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"mes": "$mes", "ano": "$ano"},
			"total": bson.M{"$sum": valueField},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID struct {
			Mes string `bson:"mes"`
			Ano int    `bson:"ano"`
		} `bson:"_id"`
		Total float64 `bson:"total"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]PeriodTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, PeriodTotal{
			Mes:   row.ID.Mes,
			Ano:   row.ID.Ano,
			Total: row.Total,
			Count: row.Count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ano != out[j].Ano {
			return out[i].Ano < out[j].Ano
		}
		return core.MesNumber(out[i].Mes) < core.MesNumber(out[j].Mes)
	})
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (s *mongoAnalytics) Categories(ctx context.Context, userID, mes string, ano int) (*CategoriesReport, error) {
	match := notDeleted(userID)
	match["mes"] = core.NormalizeMes(mes)
	match["ano"] = ano

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$categoria",
			"total":  bson.M{"$sum": "$valor"},
			"count":  bson.M{"$sum": 1},
			"media":  bson.M{"$avg": "$valor"},
			"max":    bson.M{"$max": "$valor"},
			"min":    bson.M{"$min": "$valor"},
			"gastos": bson.M{"$push": "$$ROOT"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := s.gastos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}

	var rows []struct {
		Categoria string       `bson:"_id"`
		Total     float64      `bson:"total"`
		Count     int          `bson:"count"`
		Media     float64      `bson:"media"`
		Max       float64      `bson:"max"`
		Min       float64      `bson:"min"`
		Gastos    []core.Gasto `bson:"gastos"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	report := &CategoriesReport{TotalCategorias: len(rows)}
	for _, row := range rows {
		report.TotalGeral += row.Total
	}
	for _, row := range rows {
		stat := CategoriaStat{
			Categoria: row.Categoria,
			Total:     row.Total,
			Count:     row.Count,
			Media:     round2(row.Media),
			Max:       row.Max,
			Min:       row.Min,
			Gastos:    row.Gastos,
		}
		if report.TotalGeral > 0 {
			stat.Percentual = round2(row.Total / report.TotalGeral * 100)
		}
		report.Categorias = append(report.Categorias, stat)
	}
	return report, nil
}

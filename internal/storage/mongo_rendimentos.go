package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"financas/internal/core"
)

type mongoRendimentos struct {
	coll *mongo.Collection
}

func (s *mongoRendimentos) Create(ctx context.Context, r *core.Rendimento) error {
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

	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert rendimento: %w", mapMongoErr(err))
	}
	return nil
}

func (s *mongoRendimentos) GetByID(ctx context.Context, userID, id string) (*core.Rendimento, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	filter := notDeleted(userID)
	filter["_id"] = id

	var r core.Rendimento
	if err := s.coll.FindOne(ctx, filter).Decode(&r); err != nil {
		return nil, mapMongoErr(err)
	}
	return &r, nil
}

func (s *mongoRendimentos) Update(ctx context.Context, userID, id string, in *core.Rendimento) (*core.Rendimento, error) {
	current, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	in.ID = current.ID
	in.UserID = current.UserID
	in.Lifecycle = current.Lifecycle
	in.CreatedAt = current.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	in.DerivePeriod()
	in.ApplyIVA()

	filter := notDeleted(userID)
	filter["_id"] = id
	res, err := s.coll.ReplaceOne(ctx, filter, in)
	if err != nil {
		return nil, fmt.Errorf("update rendimento: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return nil, core.ErrNotFound
	}
	out := *in
	return &out, nil
}

func (s *mongoRendimentos) SoftDelete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	filter := notDeleted(userID)
	filter["_id"] = id
	update := bson.M{"$set": bson.M{
		"lifecycle": string(core.LifecycleExcluido),
		"updatedAt": time.Now().UTC(),
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("delete rendimento: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *mongoRendimentos) List(ctx context.Context, f RendimentoFilter) ([]core.Rendimento, Pagination, error) {
	filter := notDeleted(f.UserID)
	if f.Tipo != "" {
		filter["tipo"] = f.Tipo
	}
	if mes := core.NormalizeMes(f.Mes); mes != "" {
		filter["mes"] = mes
	}
	if f.Ano != 0 {
		filter["ano"] = f.Ano
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return s.findPage(ctx, filter, f.Page, f.Limit)
}

func (s *mongoRendimentos) findPage(ctx context.Context, filter bson.M, page, limit int64) ([]core.Rendimento, Pagination, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count rendimentos: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "data", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find rendimentos: %w", err)
	}

	var records []core.Rendimento
	if err := cursor.All(ctx, &records); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode rendimentos: %w", err)
	}
	return records, NewPagination(page, limit, total), nil
}

func (s *mongoRendimentos) ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Rendimento, error) {
	filter := notDeleted(userID)
	filter["mes"] = core.NormalizeMes(mes)
	filter["ano"] = ano

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "data", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find rendimentos by period: %w", err)
	}
	var records []core.Rendimento
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode rendimentos: %w", err)
	}
	return records, nil
}

func (s *mongoRendimentos) ListRecurring(ctx context.Context) ([]core.Rendimento, error) {
	filter := bson.M{
		"lifecycle":         bson.M{"$ne": string(core.LifecycleExcluido)},
		"recorrente":        true,
		"recorrencia.ativo": true,
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find recurring rendimentos: %w", err)
	}
	var records []core.Rendimento
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode rendimentos: %w", err)
	}
	return records, nil
}

func (s *mongoRendimentos) TotalByPeriod(ctx context.Context, userID, mes string, ano int) (float64, float64, error) {
	match := notDeleted(userID)
	match["mes"] = core.NormalizeMes(mes)
	match["ano"] = ano

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": "$valor"},
			"liquido": bson.M{"$sum": "$valorLiquido"},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate rendimento totals: %w", err)
	}

	var rows []struct {
		Total   float64 `bson:"total"`
		Liquido float64 `bson:"liquido"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode rendimento totals: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Liquido, nil
}

func (s *mongoRendimentos) Stats(ctx context.Context, userID, mes string, ano int) (*RendimentoStats, error) {
	match := notDeleted(userID)
	match["mes"] = core.NormalizeMes(mes)
	match["ano"] = ano

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     "$tipo",
			"total":   bson.M{"$sum": "$valor"},
			"liquido": bson.M{"$sum": "$valorLiquido"},
			"count":   bson.M{"$sum": 1},
			"media":   bson.M{"$avg": "$valor"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate rendimento stats: %w", err)
	}

	var rows []struct {
		Tipo    string  `bson:"_id"`
		Total   float64 `bson:"total"`
		Liquido float64 `bson:"liquido"`
		Count   int     `bson:"count"`
		Media   float64 `bson:"media"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode rendimento stats: %w", err)
	}

	stats := &RendimentoStats{}
	for _, row := range rows {
		stats.Tipos = append(stats.Tipos, TipoStat{
			Tipo:    row.Tipo,
			Total:   row.Total,
			Liquido: row.Liquido,
			Count:   row.Count,
			Media:   round2(row.Media),
		})
		stats.TotalGeral += row.Total
		stats.TotalLiquido += row.Liquido
		stats.TotalRegistos += row.Count
	}
	return stats, nil
}

func (s *mongoRendimentos) Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Rendimento, Pagination, error) {
	re := bson.M{"$regex": q, "$options": "i"}
	filter := notDeleted(userID)
	filter["$or"] = bson.A{
		bson.M{"fonte": re},
		bson.M{"descricao": re},
	}
	return s.findPage(ctx, filter, page, limit)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"financas/internal/core"
)

// Collection names.
const (
	collUsers       = "users"
	collGastos      = "gastos"
	collRendimentos = "rendimentos"
	collFixedCosts  = "fixedcosts"
	collDaysWorked  = "daysworked"
	collReports     = "relatorios"
)

// MongoStore is the MongoDB backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *MongoStore) Gastos() GastoStore           { return &mongoGastos{coll: s.db.Collection(collGastos)} }
func (s *MongoStore) Rendimentos() RendimentoStore {
	return &mongoRendimentos{coll: s.db.Collection(collRendimentos)}
}
func (s *MongoStore) Users() UserStore           { return &mongoUsers{coll: s.db.Collection(collUsers)} }
func (s *MongoStore) FixedCosts() FixedCostStore {
	return &mongoFixedCosts{coll: s.db.Collection(collFixedCosts)}
}
func (s *MongoStore) DaysWorked() DaysWorkedStore {
	return &mongoDaysWorked{coll: s.db.Collection(collDaysWorked)}
}
func (s *MongoStore) Analytics() AnalyticsStore {
	return &mongoAnalytics{
		gastos:      s.db.Collection(collGastos),
		rendimentos: s.db.Collection(collRendimentos),
	}
}
func (s *MongoStore) Reports() ReportStore { return &mongoReports{coll: s.db.Collection(collReports)} }

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapMongoErr translates driver errors into the domain sentinels.
func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return core.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return core.ErrDuplicate
	default:
		return err
	}
}

// notDeleted is the base filter every read path carries.
func notDeleted(userID string) bson.M {
	return bson.M{
		"user":      userID,
		"lifecycle": bson.M{"$ne": string(core.LifecycleExcluido)},
	}
}

// ---- gastos ----

type mongoGastos struct {
	coll *mongo.Collection
}

func (s *mongoGastos) Create(ctx context.Context, g *core.Gasto) error {
	now := time.Now().UTC()
	g.ID = newID()
	g.DerivePeriod()
	if g.Status == "" {
		g.Status = "ativo"
	}
	g.Lifecycle = core.LifecycleAtivo
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, g); err != nil {
		return fmt.Errorf("insert gasto: %w", mapMongoErr(err))
	}
	return nil
}

func (s *mongoGastos) GetByID(ctx context.Context, userID, id string) (*core.Gasto, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	filter := notDeleted(userID)
	filter["_id"] = id

	var g core.Gasto
	if err := s.coll.FindOne(ctx, filter).Decode(&g); err != nil {
		return nil, mapMongoErr(err)
	}
	return &g, nil
}

func (s *mongoGastos) Update(ctx context.Context, userID, id string, in *core.Gasto) (*core.Gasto, error) {
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

	filter := notDeleted(userID)
	filter["_id"] = id
	res, err := s.coll.ReplaceOne(ctx, filter, in)
	if err != nil {
		return nil, fmt.Errorf("update gasto: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return nil, core.ErrNotFound
	}
	out := *in
	return &out, nil
}

func (s *mongoGastos) SoftDelete(ctx context.Context, userID, id string) error {
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
		return fmt.Errorf("delete gasto: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *mongoGastos) List(ctx context.Context, f GastoFilter) ([]core.Gasto, Pagination, error) {
	filter := notDeleted(f.UserID)
	if f.Categoria != "" {
		filter["categoria"] = f.Categoria
	}
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

func (s *mongoGastos) findPage(ctx context.Context, filter bson.M, page, limit int64) ([]core.Gasto, Pagination, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count gastos: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "data", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find gastos: %w", err)
	}

	var gastos []core.Gasto
	if err := cursor.All(ctx, &gastos); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode gastos: %w", err)
	}
	return gastos, NewPagination(page, limit, total), nil
}

func (s *mongoGastos) ListByPeriod(ctx context.Context, userID, mes string, ano int) ([]core.Gasto, error) {
	filter := notDeleted(userID)
	filter["mes"] = core.NormalizeMes(mes)
	filter["ano"] = ano

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "data", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find gastos by period: %w", err)
	}
	var gastos []core.Gasto
	if err := cursor.All(ctx, &gastos); err != nil {
		return nil, fmt.Errorf("decode gastos: %w", err)
	}
	return gastos, nil
}

func (s *mongoGastos) ListByCategory(ctx context.Context, userID, categoria string, limit int64) ([]core.Gasto, error) {
	filter := notDeleted(userID)
	filter["categoria"] = categoria

	opts := options.Find().SetSort(bson.D{{Key: "data", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find gastos by category: %w", err)
	}
	var gastos []core.Gasto
	if err := cursor.All(ctx, &gastos); err != nil {
		return nil, fmt.Errorf("decode gastos: %w", err)
	}
	return gastos, nil
}

func (s *mongoGastos) ListRecurring(ctx context.Context) ([]core.Gasto, error) {
	filter := bson.M{
		"lifecycle":         bson.M{"$ne": string(core.LifecycleExcluido)},
		"recorrente":        true,
		"recorrencia.ativo": true,
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find recurring gastos: %w", err)
	}
	var gastos []core.Gasto
	if err := cursor.All(ctx, &gastos); err != nil {
		return nil, fmt.Errorf("decode gastos: %w", err)
	}
	return gastos, nil
}

func (s *mongoGastos) Stats(ctx context.Context, userID, mes string, ano int) (*GastoStats, error) {
	match := notDeleted(userID)
	match["mes"] = core.NormalizeMes(mes)
	match["ano"] = ano

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$categoria",
			"total": bson.M{"$sum": "$valor"},
			"count": bson.M{"$sum": 1},
			"media": bson.M{"$avg": "$valor"},
			"max":   bson.M{"$max": "$valor"},
			"min":   bson.M{"$min": "$valor"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate gasto stats: %w", err)
	}

	var rows []struct {
		Categoria string  `bson:"_id"`
		Total     float64 `bson:"total"`
		Count     int     `bson:"count"`
		Media     float64 `bson:"media"`
		Max       float64 `bson:"max"`
		Min       float64 `bson:"min"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode gasto stats: %w", err)
	}

	stats := &GastoStats{}
	for _, row := range rows {
		stats.Categorias = append(stats.Categorias, CategoriaStat{
			Categoria: row.Categoria,
			Total:     row.Total,
			Count:     row.Count,
			Media:     round2(row.Media),
			Max:       row.Max,
			Min:       row.Min,
		})
		stats.TotalGeral += row.Total
		stats.TotalRegistos += row.Count
	}
	return stats, nil
}

func (s *mongoGastos) Search(ctx context.Context, userID, q string, page, limit int64) ([]core.Gasto, Pagination, error) {
	re := bson.M{"$regex": q, "$options": "i"}
	filter := notDeleted(userID)
	filter["$or"] = bson.A{
		bson.M{"descricao": re},
		bson.M{"observacoes": re},
		bson.M{"tags": re},
	}
	return s.findPage(ctx, filter, page, limit)
}

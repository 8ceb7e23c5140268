package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"financas/internal/core"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) Create(ctx context.Context, u *core.User) error {
	now := time.Now().UTC()
	u.ID = newID()
	u.Email = strings.ToLower(u.Email)
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", mapMongoErr(err))
	}
	return nil
}

func (s *mongoUsers) GetByID(ctx context.Context, id string) (*core.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var u core.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (s *mongoUsers) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	var u core.User
	if err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u); err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (s *mongoUsers) Update(ctx context.Context, id string, in *core.User) (*core.User, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	if in.Email == "" {
		in.Email = current.Email
	}
	in.Email = strings.ToLower(in.Email)

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, in)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return nil, core.ErrNotFound
	}
	out := *in
	return &out, nil
}

func (s *mongoUsers) Deactivate(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", mapMongoErr(err))
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *mongoUsers) List(ctx context.Context) ([]core.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var users []core.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// ---- fixed costs ----

type mongoFixedCosts struct {
	coll *mongo.Collection
}

func (s *mongoFixedCosts) List(ctx context.Context, userID string, ano int) ([]core.FixedCost, error) {
	filter := bson.M{"user": userID}
	if ano != 0 {
		filter["ano"] = ano
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "ano", Value: 1}, {Key: "mesId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find fixed costs: %w", err)
	}
	var out []core.FixedCost
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode fixed costs: %w", err)
	}
	return out, nil
}

func (s *mongoFixedCosts) Upsert(ctx context.Context, fc *core.FixedCost) (*core.FixedCost, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"user":      fc.UserID,
		"mesId":     fc.MesID,
		"ano":       fc.Ano,
		"categoria": fc.Categoria,
	}
	update := bson.M{
		"$set": bson.M{
			"valor":     fc.Valor,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       newID(),
			"user":      fc.UserID,
			"mesId":     fc.MesID,
			"ano":       fc.Ano,
			"categoria": fc.Categoria,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out core.FixedCost
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("upsert fixed cost: %w", mapMongoErr(err))
	}
	return &out, nil
}

// ---- days worked ----

type mongoDaysWorked struct {
	coll *mongo.Collection
}

func (s *mongoDaysWorked) List(ctx context.Context, userID string, ano int) ([]core.DaysWorked, error) {
	filter := bson.M{"user": userID}
	if ano != 0 {
		filter["ano"] = ano
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "ano", Value: 1}, {Key: "mesId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find days worked: %w", err)
	}
	var out []core.DaysWorked
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode days worked: %w", err)
	}
	return out, nil
}

func (s *mongoDaysWorked) Upsert(ctx context.Context, dw *core.DaysWorked) (*core.DaysWorked, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"user":  dw.UserID,
		"mesId": dw.MesID,
		"ano":   dw.Ano,
	}
	update := bson.M{
		"$set": bson.M{
			"andre":     dw.Andre,
			"aline":     dw.Aline,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       newID(),
			"user":      dw.UserID,
			"mesId":     dw.MesID,
			"ano":       dw.Ano,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out core.DaysWorked
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("upsert days worked: %w", mapMongoErr(err))
	}
	return &out, nil
}

// ---- reports ----

type mongoReports struct {
	coll *mongo.Collection
}

func (s *mongoReports) Upsert(ctx context.Context, r *InsightReport) error {
	now := time.Now().UTC()
	filter := bson.M{"user": r.UserID, "mes": r.Mes, "ano": r.Ano}
	update := bson.M{
		"$set": bson.M{
			"report":      r.Report,
			"generatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":  newID(),
			"user": r.UserID,
			"mes":  r.Mes,
			"ano":  r.Ano,
		},
	}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert insight report: %w", mapMongoErr(err))
	}
	r.GeneratedAt = now
	return nil
}

func (s *mongoReports) Get(ctx context.Context, userID, mes string, ano int) (*InsightReport, error) {
	var out InsightReport
	filter := bson.M{"user": userID, "mes": mes, "ano": ano}
	if err := s.coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapMongoErr(err)
	}
	return &out, nil
}

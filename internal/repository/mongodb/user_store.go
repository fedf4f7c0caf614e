// Package mongodb implements model.UserStore on a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"user-service/internal/model"
)

// userDocument is the stored shape of a user. The internal identifier and
// revision counter stay inside this package.
type userDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Version    int                `bson:"__v"`
	model.User `bson:",inline"`
}

// summaryProjection selects the public listing fields
var summaryProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "username", Value: 1},
	{Key: "fullName", Value: 1},
	{Key: "age", Value: 1},
	{Key: "email", Value: 1},
	{Key: "address", Value: 1},
}

// UserStore persists users in a single collection keyed by userId
type UserStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ model.UserStore = (*UserStore)(nil)

// NewUserStore creates a store over database.collection
func NewUserStore(client *mongo.Client, database, collection string) *UserStore {
	return &UserStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the unique indexes on userId and username
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("userId_1"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func byUserID(userID int) bson.D {
	return bson.D{{Key: "userId", Value: userID}}
}

func (s *UserStore) FindByUserID(ctx context.Context, userID int) (model.User, error) {
	var doc userDocument
	err := s.collection.FindOne(ctx, byUserID(userID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find user %d: %w", userID, err)
	}
	return doc.User, nil
}

func (s *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	if len(user.Orders) == 0 {
		user.Orders = nil
	}

	_, err := s.collection.InsertOne(ctx, userDocument{User: user})
	if err != nil {
		if dup := duplicateKeyError(err, user.UserID, user.Username); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to insert user %d: %w", user.UserID, err)
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]model.UserSummary, error) {
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := []model.UserSummary{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, userID int, patch model.UserPatch) (model.User, error) {
	set, unset, err := updateDocument(patch)
	if err != nil {
		return model.User{}, err
	}
	if len(set) == 0 && len(unset) == 0 {
		return s.FindByUserID(ctx, userID)
	}

	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	var doc userDocument
	err = s.collection.FindOneAndUpdate(ctx, byUserID(userID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		if dup := duplicateKeyError(err, deref(patch.UserID), deref(patch.Username)); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return doc.User, nil
}

// updateDocument splits a patch into $set and $unset parts. An empty orders
// replacement unsets the field so that orders is never stored empty.
func updateDocument(patch model.UserPatch) (bson.D, bson.D, error) {
	var unset bson.D
	if patch.Orders != nil && len(*patch.Orders) == 0 {
		patch.Orders = nil
		unset = bson.D{{Key: "orders", Value: ""}}
	}

	raw, err := bson.Marshal(patch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode user patch: %w", err)
	}
	var set bson.D
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, nil, fmt.Errorf("failed to decode user patch: %w", err)
	}
	return set, unset, nil
}

func (s *UserStore) Delete(ctx context.Context, userID int) (int64, error) {
	res, err := s.collection.DeleteOne(ctx, byUserID(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return res.DeletedCount, nil
}

func (s *UserStore) PushOrder(ctx context.Context, userID int, order model.Order) (int64, error) {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "orders", Value: order}}}}
	return s.updateOrders(ctx, userID, update)
}

func (s *UserStore) SetOrders(ctx context.Context, userID int, orders []model.Order) (int64, error) {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "orders", Value: orders}}}}
	return s.updateOrders(ctx, userID, update)
}

func (s *UserStore) updateOrders(ctx context.Context, userID int, update bson.D) (int64, error) {
	res, err := s.collection.UpdateOne(ctx, byUserID(userID), update)
	if err != nil {
		return 0, fmt.Errorf("failed to update orders of user %d: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return 0, model.ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (s *UserStore) Orders(ctx context.Context, userID int) ([]model.Order, error) {
	var doc struct {
		Orders []model.Order `bson:"orders"`
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "orders", Value: 1}})
	err := s.collection.FindOne(ctx, byUserID(userID), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find orders of user %d: %w", userID, err)
	}
	return doc.Orders, nil
}

// OrderTotal sums price*quantity over the user's orders inside the database
func (s *UserStore) OrderTotal(ctx context.Context, userID int) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: byUserID(userID)}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "totalPrice", Value: bson.D{{Key: "$reduce", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$orders", bson.A{}}}}},
				{Key: "initialValue", Value: 0},
				{Key: "in", Value: bson.D{{Key: "$add", Value: bson.A{
					"$$value",
					bson.D{{Key: "$multiply", Value: bson.A{"$$this.price", "$$this.quantity"}}},
				}}}},
			}}}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate order total of user %d: %w", userID, err)
	}

	var results []struct {
		TotalPrice float64 `bson:"totalPrice"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode order total of user %d: %w", userID, err)
	}
	if len(results) == 0 {
		return 0, model.ErrNotFound
	}
	return results[0].TotalPrice, nil
}

func (s *UserStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// duplicateKeyError maps a unique index violation to a constraint error
func duplicateKeyError(err error, userID any, username any) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "username") {
		return model.NewDuplicateKeyError("username", username)
	}
	return model.NewDuplicateKeyError("userId", userID)
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

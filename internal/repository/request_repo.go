package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

type RequestRepository interface {
	Create(ctx context.Context, fr *models.FriendRequest) error
	FindByID(ctx context.Context, id string) (*models.FriendRequest, error)
	// FindBetween matches the unordered sender/receiver pair.
	FindBetween(ctx context.Context, a, b string) (*models.FriendRequest, error)
	FindByReceiver(ctx context.Context, userID string) ([]*models.FriendRequest, error)
	Delete(ctx context.Context, id string) error
}

type mongoRequestRepo struct {
	col *mongo.Collection
}

func NewMongoRequestRepo(db *mongo.Database) RequestRepository {
	return &mongoRequestRepo{col: db.Collection("requests")}
}

func (r *mongoRequestRepo) Create(ctx context.Context, fr *models.FriendRequest) error {
	if fr.ID == "" {
		fr.ID = primitive.NewObjectID().Hex()
	}
	fr.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, fr)
	return err
}

func (r *mongoRequestRepo) FindByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&fr)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *mongoRequestRepo) FindBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
	var fr models.FriendRequest
	err := r.col.FindOne(ctx, filter).Decode(&fr)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *mongoRequestRepo) FindByReceiver(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	cur, err := r.col.Find(ctx, bson.M{"receiver": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.FriendRequest
	for cur.Next(ctx) {
		var fr models.FriendRequest
		if err := cur.Decode(&fr); err != nil {
			return nil, err
		}
		out = append(out, &fr)
	}
	return out, cur.Err()
}

func (r *mongoRequestRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

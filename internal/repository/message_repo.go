package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// FindPage returns messages of a chat newest-first within the window.
	FindPage(ctx context.Context, chatID string, skip, limit int64) ([]*models.Message, error)
	Count(ctx context.Context, chatID string) (int64, error)
	FindWithAttachments(ctx context.Context, chatID string) ([]*models.Message, error)
	DeleteByChat(ctx context.Context, chatID string) error
}

type mongoMessageRepo struct {
	col *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "chat", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &mongoMessageRepo{col: col}
}

func (r *mongoMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

func (r *mongoMessageRepo) FindPage(ctx context.Context, chatID string, skip, limit int64) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func (r *mongoMessageRepo) Count(ctx context.Context, chatID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"chat": chatID})
}

func (r *mongoMessageRepo) FindWithAttachments(ctx context.Context, chatID string) ([]*models.Message, error) {
	filter := bson.M{"chat": chatID, "attachments": bson.M{"$exists": true, "$ne": bson.A{}}}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func (r *mongoMessageRepo) DeleteByChat(ctx context.Context, chatID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"chat": chatID})
	return err
}

func decodeMessages(ctx context.Context, cur *mongo.Cursor) ([]*models.Message, error) {
	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aryan192003/Chatify-backend/internal/models"
)

type ChatRepository interface {
	Create(ctx context.Context, c *models.Chat) error
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	FindByMember(ctx context.Context, userID string) ([]*models.Chat, error)
	FindDirectByMember(ctx context.Context, userID string) ([]*models.Chat, error)
	FindGroupsByCreator(ctx context.Context, userID string) ([]*models.Chat, error)
	Save(ctx context.Context, c *models.Chat) error
	Delete(ctx context.Context, id string) error
}

type mongoChatRepo struct {
	col *mongo.Collection
}

func NewMongoChatRepo(db *mongo.Database) ChatRepository {
	col := db.Collection("chats")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "members", Value: 1}},
	})
	return &mongoChatRepo{col: col}
}

func (r *mongoChatRepo) Create(ctx context.Context, c *models.Chat) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *mongoChatRepo) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var c models.Chat
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoChatRepo) FindByMember(ctx context.Context, userID string) ([]*models.Chat, error) {
	return r.find(ctx, bson.M{"members": userID})
}

func (r *mongoChatRepo) FindDirectByMember(ctx context.Context, userID string) ([]*models.Chat, error) {
	return r.find(ctx, bson.M{"members": userID, "group_chat": false})
}

func (r *mongoChatRepo) FindGroupsByCreator(ctx context.Context, userID string) ([]*models.Chat, error) {
	return r.find(ctx, bson.M{"members": userID, "group_chat": true, "creator": userID})
}

func (r *mongoChatRepo) Save(ctx context.Context, c *models.Chat) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoChatRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoChatRepo) find(ctx context.Context, filter bson.M) ([]*models.Chat, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

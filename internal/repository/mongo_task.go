package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskforge/taskforge-backend/internal/models"
)

type MongoTaskRepository struct {
	col *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{col: db.Collection("tasks")}
}

func (r *MongoTaskRepository) Insert(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		task.ID = oid
	}
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.col.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *MongoTaskRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID, listOpts TaskListOptions) ([]models.Task, error) {
	filter := bson.M{"owner": owner}
	if listOpts.Completed != nil {
		filter["completed"] = *listOpts.Completed
	}

	opts := options.Find()
	if listOpts.Limit > 0 {
		opts.SetLimit(listOpts.Limit)
	}
	if listOpts.Skip > 0 {
		opts.SetSkip(listOpts.Skip)
	}
	if listOpts.SortField != "" {
		order := 1
		if listOpts.SortDesc {
			order = -1
		}
		opts.SetSort(bson.D{{Key: listOpts.SortField, Value: order}})
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Save(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": task.ID, "owner": task.Owner}, task)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every task owned by the user. Called before the user
// document itself is deleted so no orphaned tasks persist.
func (r *MongoTaskRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"owner": owner})
	return err
}

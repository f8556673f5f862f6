package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description *string    `bson:"description"`
	Status      string     `bson:"status"`
	DueDate     *time.Time `bson:"dueDate"`
	CreatedBy   string     `bson:"createdBy"`
	AssignedTo  *string    `bson:"assignedTo"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(coll *mongo.Collection) repository.TaskRepository {
	return &TaskRepository{coll: coll}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create tasks indexes: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	if task.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		task.ID = id
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toTaskDocument(task)); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	doc := toTaskDocument(task)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"status":      doc.Status,
		"dueDate":     doc.DueDate,
		"assignedTo":  doc.AssignedTo,
		"updatedAt":   doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update task: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete task: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("task: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	task := fromTaskDocument(doc)
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, int64, error) {
	filter := listFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	cur, err := r.coll.Find(ctx, filter, listOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []domain.Task{}
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, fromTaskDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, total, nil
}

func listFilter(q domain.TaskQuery) bson.M {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"createdBy": q.UserID},
			bson.M{"assignedTo": q.UserID},
		},
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$and"] = bson.A{
			bson.M{"$or": bson.A{
				bson.M{"title": pattern},
				bson.M{"description": pattern},
			}},
		}
	}
	return filter
}

// listOptions orders newest first. UUIDv7 ids break createdAt ties, which are
// common since BSON dates keep only milliseconds.
func listOptions(q domain.TaskQuery) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
}

func toTaskDocument(task *domain.Task) taskDocument {
	return taskDocument{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedBy:   task.CreatedBy,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func fromTaskDocument(doc taskDocument) domain.Task {
	return domain.Task{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      domain.TaskStatus(doc.Status),
		DueDate:     doc.DueDate,
		CreatedBy:   doc.CreatedBy,
		AssignedTo:  doc.AssignedTo,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

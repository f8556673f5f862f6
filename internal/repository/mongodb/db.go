// Package mongodb stores users and tasks as MongoDB documents.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"task-tracker/internal/repository"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// OpenStore connects to the deployment at uri and returns repositories over the named database.
func OpenStore(ctx context.Context, uri, database string) (*repository.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return repository.NewStore(
		NewUserRepository(db.Collection(usersCollection)),
		NewTaskRepository(db.Collection(tasksCollection)),
		client.Disconnect,
	), nil
}

// newID returns a UUIDv7 string. Within a process the ids sort in creation
// order, so `_id` breaks ties between documents stamped in the same millisecond.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

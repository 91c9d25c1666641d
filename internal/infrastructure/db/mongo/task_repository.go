package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

const collectionTasks = "tasks"

// TaskRepository implements ports.TaskRepository. Every filter carries the owner.
type TaskRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewTaskRepository(db *mongo.Database, timeout time.Duration) *TaskRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TaskRepository{col: db.Collection(collectionTasks), timeout: timeout}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Completed:   d.Completed,
		Owner:       d.Owner.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// ownedFilter builds {_id, owner}; malformed ids read as not found.
func ownedFilter(id, owner string) (bson.M, error) {
	oid, err := objectID(id, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	ownerID, err := objectID(owner, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "owner": ownerID}, nil
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ownerID, err := primitive.ObjectIDFromHex(task.Owner)
	if err != nil {
		return nil, domain.NewValidationError("owner", "is invalid")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := taskDocument{
		Description: task.Description,
		Completed:   task.Completed,
		Owner:       ownerID,
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, storeErr("insert task", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, storeErr("insert task", errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// FindByID retrieves a task only if it belongs to owner.
func (r *TaskRepository) FindByID(ctx context.Context, id, owner string) (*domain.Task, error) {
	filter, err := ownedFilter(id, owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("find task", err)
	}
	return doc.toDomain(), nil
}

// List returns a page of the owner's tasks ordered by creation time.
func (r *TaskRepository) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	ownerID, err := primitive.ObjectIDFromHex(f.Owner)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"owner": ownerID}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Skip))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode tasks", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

// Update writes description and completed; owner is never rewritten.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	filter, err := ownedFilter(task.ID, task.Owner)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"description": task.Description,
		"completed":   task.Completed,
		"updatedAt":   task.UpdatedAt.UTC(),
	}})
	if err != nil {
		return storeErr("update task", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes the task and returns it.
func (r *TaskRepository) Delete(ctx context.Context, id, owner string) (*domain.Task, error) {
	filter, err := ownedFilter(id, owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("delete task", err)
	}
	return doc.toDomain(), nil
}

// DeleteByOwner removes every task of owner.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return 0, storeErr("delete owner tasks", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the owner index used by every task query.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "completed", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

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
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository and ports.SessionStore.
// Session mutations are single-document atomic updates ($push, $pull, $set).
type UserRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UserRepository{col: db.Collection(collectionUsers), timeout: timeout}
}

type tokenDocument struct {
	Token string `bson:"token"`
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       int                `bson:"age"`
	Password  string             `bson:"password"`
	Tokens    []tokenDocument    `bson:"tokens"`
	Avatar    []byte             `bson:"avatar,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// withoutAvatar keeps identity lookups from dragging the image blob along.
var withoutAvatar = bson.M{"avatar": 0}

func toUserDocument(u *domain.User) userDocument {
	tokens := make([]tokenDocument, 0, len(u.Tokens))
	for _, t := range u.Tokens {
		tokens = append(tokens, tokenDocument{Token: t.Token})
	}
	return userDocument{
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Password:  u.PasswordHash,
		Tokens:    tokens,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func (d userDocument) toDomain() *domain.User {
	tokens := make([]domain.Token, 0, len(d.Tokens))
	for _, t := range d.Tokens {
		tokens = append(tokens, domain.Token{Token: t.Token})
	}
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Age:          d.Age,
		PasswordHash: d.Password,
		Tokens:       tokens,
		Avatar:       d.Avatar,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := toUserDocument(user)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, storeErr("insert user", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, storeErr("insert user", errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	err := r.col.FindOne(ctx, filter, options.FindOne().SetProjection(withoutAvatar)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return doc.toDomain(), nil
}

// Update writes the profile fields and password hash.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := objectID(user.ID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"age":       user.Age,
		"password":  user.PasswordHash,
		"updatedAt": user.UpdatedAt.UTC(),
	}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return storeErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetAvatar stores avatar, or unsets the field when avatar is nil.
func (r *UserRepository) SetAvatar(ctx context.Context, id string, avatar []byte) error {
	update := bson.M{
		"$set": bson.M{"avatar": avatar, "updatedAt": time.Now().UTC()},
	}
	if avatar == nil {
		update = bson.M{
			"$unset": bson.M{"avatar": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	return r.updateByID(ctx, "set avatar", id, update)
}

func (r *UserRepository) FindAvatar(ctx context.Context, id string) ([]byte, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc struct {
		Avatar []byte `bson:"avatar"`
	}
	opts := options.FindOne().SetProjection(bson.M{"avatar": 1})
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find avatar", err)
	}
	return doc.Avatar, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// PushToken atomically appends a session token.
func (r *UserRepository) PushToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, "push token", userID, bson.M{
		"$push": bson.M{"tokens": tokenDocument{Token: token}},
	})
}

// PullToken atomically removes every entry equal to token.
func (r *UserRepository) PullToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, "pull token", userID, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
	})
}

func (r *UserRepository) ClearTokens(ctx context.Context, userID string) error {
	return r.updateByID(ctx, "clear tokens", userID, bson.M{
		"$set": bson.M{"tokens": []tokenDocument{}},
	})
}

func (r *UserRepository) HasToken(ctx context.Context, userID, token string) (bool, error) {
	oid, err := objectID(userID, domain.ErrUserNotFound)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid, "tokens.token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count token", err)
	}
	return n > 0, nil
}

// FindBySession loads the user only while token is still in its sequence.
func (r *UserRepository) FindBySession(ctx context.Context, userID, token string) (*domain.User, error) {
	oid, err := objectID(userID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid, "tokens.token": token})
}

func (r *UserRepository) updateByID(ctx context.Context, op, id string, update bson.M) error {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return storeErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index and the session lookup index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tokens.token", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

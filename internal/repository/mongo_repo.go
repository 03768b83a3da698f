package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskboard/internal/domain"
)

type mongoTask struct {
	ID          int64     `bson:"_id"`
	UserID      int64     `bson:"user_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description"`
	Completed   int16     `bson:"completed"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type mongoUser struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	LastSignedIn time.Time `bson:"last_signed_in"`
}

// EnsureMongoIndexes creates the owner/creation index on tasks and the
// unique email index on users.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("tasks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("tasks index: %w", err)
	}
	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

// nextID hands out sequential integer ids from the counters collection.
func nextID(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

type MongoTaskRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{db: db, coll: db.Collection("tasks")}
}

func (r *MongoTaskRepository) Create(ctx context.Context, owner domain.OwnerID, d domain.TaskDraft) error {
	id, err := nextID(ctx, r.db, "tasks")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.coll.InsertOne(ctx, mongoTask{
		ID:          id,
		UserID:      int64(owner),
		Title:       d.Title,
		Description: d.Description,
		Completed:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return err
}

func (r *MongoTaskRepository) ListByOwner(ctx context.Context, owner domain.OwnerID, filter domain.TaskFilter) ([]*domain.Task, error) {
	q := bson.M{"user_id": int64(owner)}
	if v, ok := filter.CompletedValue(); ok {
		q["completed"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoTask
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	res := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		res = append(res, &domain.Task{
			ID:          d.ID,
			UserID:      d.UserID,
			Title:       d.Title,
			Description: d.Description,
			Completed:   d.Completed == 1,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}
	return res, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, owner domain.OwnerID, id int64, p domain.TaskPatch) error {
	if p.Empty() {
		return nil
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.DescriptionSet {
		set["description"] = p.Description
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": int64(owner)}, bson.M{"$set": set})
	return err
}

func (r *MongoTaskRepository) SetCompleted(ctx context.Context, owner domain.OwnerID, id int64, completed bool) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": int64(owner)},
		bson.M{"$set": bson.M{
			"completed":  domain.CompletedFlag(completed),
			"updated_at": time.Now().UTC(),
		}},
	)
	return err
}

func (r *MongoTaskRepository) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": int64(owner)})
	return err
}

type MongoUserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db, coll: db.Collection("users")}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	id, err := nextID(ctx, r.db, "users")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := mongoUser{
		ID:           id,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	u.ID = id
	u.CreatedAt, u.UpdatedAt, u.LastSignedIn = now, now, now
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) TouchLastSignedIn(ctx context.Context, id int64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_signed_in": time.Now().UTC()}})
	return err
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc mongoUser
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           doc.ID,
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastSignedIn: doc.LastSignedIn,
	}, nil
}

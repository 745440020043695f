package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MongoCollectionName = "sessions"

var _ Repo = (*MongoRepo)(nil)

type sessionDocument struct {
	ID         string    `bson:"_id"`
	Principal  Principal `bson:"principal"`
	Persistent bool      `bson:"persistent"`
	CreatedAt  time.Time `bson:"createdAt"`
	ExpiresAt  time.Time `bson:"expires"`
}

// MongoRepo keeps sessions in the application database. A TTL index on
// expires lets the server purge them; reads still check expiry because the
// purge runs about once a minute.
type MongoRepo struct {
	coll    *mongo.Collection
	nowTime func() time.Time
}

func NewMongoRepo(ctx context.Context, db *mongo.Database) (*MongoRepo, error) {
	coll := db.Collection(MongoCollectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("[NewMongoRepo] create ttl index: %w", err)
	}
	return &MongoRepo{coll: coll, nowTime: time.Now}, nil
}

func (r *MongoRepo) Upsert(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id is required")
	}
	doc := sessionDocument{
		ID:         session.ID,
		Principal:  session.Principal,
		Persistent: session.Persistent,
		CreatedAt:  session.CreatedAt,
		ExpiresAt:  session.ExpiresAt,
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": session.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *MongoRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	session := &Session{
		ID:         doc.ID,
		Principal:  doc.Principal,
		Persistent: doc.Persistent,
		CreatedAt:  doc.CreatedAt,
		ExpiresAt:  doc.ExpiresAt,
	}
	if session.Expired(r.nowTime()) {
		return nil, ErrNotFound
	}
	return session, nil
}

func (r *MongoRepo) Delete(ctx context.Context, sessionID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

package mongorepo

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/ipo-auth-server/users"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "users"

var _ users.UserRepo = (*UserRepo)(nil)

type UserRepo struct {
	coll    *mongo.Collection
	nowTime func() time.Time
}

// NewUserRepo returns a repo over the users collection and makes sure the
// unique indexes exist. googleId is sparse so any number of local accounts
// can go without one.
func NewUserRepo(ctx context.Context, db *mongo.Database) (*UserRepo, error) {
	coll := db.Collection(CollectionName)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[NewUserRepo] create indexes")
	}
	return &UserRepo{coll: coll, nowTime: time.Now}, nil
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if err := user.Validate(); err != nil {
		return pkgerrors.Wrap(err, "[UserRepo.Create]")
	}
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	now := r.nowTime()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrDuplicate
		}
		return pkgerrors.Wrap(err, "[UserRepo.Create]")
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string, opts ...users.GetOption) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, opts...)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string, opts ...users.GetOption) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, opts...)
}

func (r *UserRepo) GetByProviderID(ctx context.Context, providerID string, opts ...users.GetOption) (*users.User, error) {
	return r.findOne(ctx, bson.M{"googleId": providerID}, opts...)
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M, opts ...users.GetOption) (*users.User, error) {
	findOpts := options.FindOne()
	if !users.ApplyGetOptions(opts...).IncludePassword {
		findOpts.SetProjection(bson.M{"password": 0})
	}

	var u users.User
	err := r.coll.FindOne(ctx, filter, findOpts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[UserRepo.findOne]")
	}
	return &u, nil
}

func (r *UserRepo) LinkProvider(ctx context.Context, userID, providerID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "googleId": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"googleId": providerID, "updatedAt": r.nowTime()}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrDuplicate
	}
	if err != nil {
		return pkgerrors.Wrap(err, "[UserRepo.LinkProvider]")
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, userID); err != nil {
			return err
		}
		return users.ErrDuplicate
	}
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"resetPasswordToken":   tokenHash,
			"resetPasswordExpires": expires,
			"updatedAt":            r.nowTime(),
		},
	})
}

func (r *UserRepo) ClearResetToken(ctx context.Context, userID string) error {
	return r.updateByID(ctx, userID, bson.M{
		"$set":   bson.M{"updatedAt": r.nowTime()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	})
}

func (r *UserRepo) CompleteReset(ctx context.Context, userID, tokenHash, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "resetPasswordToken": tokenHash},
		bson.M{
			"$set":   bson.M{"password": passwordHash, "updatedAt": r.nowTime()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
		},
	)
	if err != nil {
		return pkgerrors.Wrap(err, "[UserRepo.CompleteReset]")
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepo) updateByID(ctx context.Context, userID string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return pkgerrors.Wrap(err, "[UserRepo.updateByID]")
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

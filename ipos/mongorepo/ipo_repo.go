package mongorepo

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/ipo-auth-server/ipos"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "ipos"

var _ ipos.Repo = (*IPORepo)(nil)

type IPORepo struct {
	coll    *mongo.Collection
	nowTime func() time.Time
}

func NewIPORepo(db *mongo.Database) *IPORepo {
	return &IPORepo{coll: db.Collection(CollectionName), nowTime: time.Now}
}

func (r *IPORepo) Create(ctx context.Context, ipo *ipos.IPO) error {
	if ipo.ID == "" {
		ipo.ID = ipos.NewID()
	}
	now := r.nowTime()
	ipo.CreatedAt, ipo.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, ipo); err != nil {
		return pkgerrors.Wrap(err, "[IPORepo.Create]")
	}
	return nil
}

func (r *IPORepo) List(ctx context.Context) ([]*ipos.IPO, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[IPORepo.List]")
	}
	list := []*ipos.IPO{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, pkgerrors.Wrap(err, "[IPORepo.List] decode")
	}
	return list, nil
}

func (r *IPORepo) Get(ctx context.Context, id string) (*ipos.IPO, error) {
	var ipo ipos.IPO
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ipo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ipos.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[IPORepo.Get]")
	}
	return &ipo, nil
}

func (r *IPORepo) Delete(ctx context.Context, id string) (*ipos.IPO, error) {
	var ipo ipos.IPO
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&ipo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ipos.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[IPORepo.Delete]")
	}
	return &ipo, nil
}

func (r *IPORepo) Update(ctx context.Context, id string, update *ipos.Update) (*ipos.IPO, error) {
	set := bson.M{"updatedAt": r.nowTime()}
	for k, v := range update.Fields() {
		set[k] = v
	}
	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *IPORepo) SetLogo(ctx context.Context, id string, logo *ipos.Logo) (*ipos.IPO, error) {
	if logo == nil {
		return r.findAndUpdate(ctx, id, bson.M{
			"$set":   bson.M{"updatedAt": r.nowTime()},
			"$unset": bson.M{"companyLogo": ""},
		})
	}
	return r.findAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"companyLogo": logo, "updatedAt": r.nowTime()},
	})
}

func (r *IPORepo) findAndUpdate(ctx context.Context, id string, update bson.M) (*ipos.IPO, error) {
	var ipo ipos.IPO
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ipo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ipos.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[IPORepo.findAndUpdate]")
	}
	return &ipo, nil
}

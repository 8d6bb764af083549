package user

import (
	"context"

	mgo "github.com/Piyash1/AstroChat-Mobile/data/mongo"
	"github.com/Piyash1/AstroChat-Mobile/module/user/model"
	"github.com/Piyash1/AstroChat-Mobile/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	pkgerrors "github.com/pkg/errors"
)

const CollectionName = "users"

// Directory resolves identity-provider subjects to user records. A subject
// with a valid token but no user record is reported as ErrUserNotFound; the
// handshake treats that the same as a bad token.
type Directory struct {
	coll *mongo.Collection
}

func NewDirectory(client *mgo.Client) *Directory {
	return &Directory{coll: client.GetDB().Collection(CollectionName)}
}

func (d *Directory) FindBySubject(ctx context.Context, subjectID string) (*model.User, error) {
	var u model.User
	err := d.coll.FindOne(ctx, bson.M{"subject_id": subjectID}).Decode(&u)
	if pkgerrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound.WrapMsg("subject not registered")
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by subject")
	}
	return &u, nil
}

func (d *Directory) FindByID(ctx context.Context, userID string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrUserNotFound.WrapMsg("bad user id", "userID", userID)
	}
	var u model.User
	err = d.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if pkgerrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound.WrapMsg("no such user", "userID", userID)
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by id")
	}
	return &u, nil
}

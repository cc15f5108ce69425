package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/internal/domain"
)

// MongoUserRepository implementa UserRepository sobre la colección users.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(database *mongo.Database, collection string) *MongoUserRepository {
	return &MongoUserRepository{coll: database.Collection(collection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return mapMongoError(err)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	filter, ok := usernameOrEmailFilter(username, email)
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return r.findOne(ctx, filter)
}

func (r *MongoUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter, ok := usernameOrEmailFilter(username, email)
	if !ok {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, mapMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now}}
	if token == "" {
		update = bson.M{"$set": bson.M{"updatedAt": now}, "$unset": bson.M{"refreshToken": ""}}
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *MongoUserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	filter := bson.M{"_id": id, "refreshToken": current}
	update := bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, filter, update)
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	update := bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *MongoUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"fullname": fullName, "email": email})
}

func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id, url string) (domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"avatar": url})
}

func (r *MongoUserRepository) UpdateCoverImage(ctx context.Context, id, url string) (domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"coverImage": url})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return domain.User{}, mapMongoError(err)
	}
	return u, nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findOneAndSet(ctx context.Context, id string, fields bson.M) (domain.User, error) {
	fields["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u domain.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&u)
	if err != nil {
		return domain.User{}, mapMongoError(err)
	}
	return u, nil
}

func usernameOrEmailFilter(username, email string) (bson.M, bool) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, false
	}
	return bson.M{"$or": or}, true
}

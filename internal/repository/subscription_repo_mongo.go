package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/internal/domain"
)

type MongoSubscriptionRepository struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepository(database *mongo.Database, collection string) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{coll: database.Collection(collection)}
}

func (r *MongoSubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) error {
	_, err := r.coll.InsertOne(ctx, sub)
	return mapMongoError(err)
}

func (r *MongoSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (domain.Subscription, error) {
	var sub domain.Subscription
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	err := r.coll.FindOne(ctx, bson.M{"subscriber": subscriberID, "channel": channelID}, opts).Decode(&sub)
	if err != nil {
		return domain.Subscription{}, mapMongoError(err)
	}
	return sub, nil
}

func (r *MongoSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"subscriber": subscriberID, "channel": channelID})
	if err != nil {
		return 0, mapMongoError(err)
	}
	return res.DeletedCount, nil
}

func (r *MongoSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"channel": channelID})
	return n, mapMongoError(err)
}

func (r *MongoSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"subscriber": subscriberID})
	return n, mapMongoError(err)
}

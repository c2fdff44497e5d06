package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/swagata71/ds-practice-2025/configs"
)

// MongoStore keeps the stock map in a MongoDB collection, one document per
// title. Conditional decrement is pushed down as a filtered $inc so the
// stock check and the write stay atomic on the server.
type MongoStore struct {
	ctx    context.Context
	client *mongo.Client
	main   *mongo.Collection
	log    *LogManager
}

type bookDoc struct {
	Title string `json:"title" bson:"_id"`
	Stock int32  `json:"stock" bson:"stock"`
}

func NewMongoStore(nodeID string) *MongoStore {
	c := &MongoStore{log: NewLogManager(nodeID)}
	var err error
	c.ctx = context.TODO()
	c.client, err = mongo.Connect(c.ctx, options.Client().ApplyURI(configs.MongoDBLink))
	if err != nil {
		panic(err)
	}
	err = c.client.Ping(c.ctx, readpref.Primary())
	if err != nil {
		panic(err)
	}
	db := c.client.Database(fmt.Sprintf("bookstore%s", nodeID))
	err = db.Collection("BOOKS").Drop(c.ctx)
	if err != nil {
		panic(err)
	}
	c.main = db.Collection("BOOKS")
	return c
}

func (c *MongoStore) Read(title string) (int32, error) {
	res := bookDoc{}
	err := c.main.FindOne(c.ctx, bson.D{{Key: "_id", Value: title}}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return res.Stock, nil
}

func (c *MongoStore) Write(title string, newStock int32) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.main.UpdateOne(c.ctx, bson.M{"_id": title},
		bson.M{"$set": bson.M{"stock": newStock}}, opts)
	if err == nil {
		c.log.writeStock(title, newStock)
	}
	return err
}

func (c *MongoStore) DecrementStock(title string, quantity int32) (bool, int32, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)
	res := bookDoc{}
	err := c.main.FindOneAndUpdate(c.ctx,
		bson.M{"_id": title, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}}, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		remaining, rerr := c.Read(title)
		return false, remaining, rerr
	}
	if err != nil {
		return false, 0, err
	}
	c.log.writeDecrement(title, quantity, res.Stock)
	return true, res.Stock, nil
}

func (c *MongoStore) Close() {
	c.log.Close()
	configs.CheckError(c.client.Disconnect(c.ctx))
}

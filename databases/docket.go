package databases

// go generate: mockery --name DocketDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rightsdesk/docket-api/models"
)

const docketName = "dockets"

// DocketDatabase contains the methods to use with the docket database
type DocketDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Docket, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Docket, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]bson.M, error)
}

type docketDatabase struct {
	db DatabaseHelper
}

// NewDocketDatabase initializes a new instance of docket database with the provided db connection
func NewDocketDatabase(db DatabaseHelper) DocketDatabase {
	return &docketDatabase{
		db: db,
	}
}

func (c *docketDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Docket, error) {
	docket := &models.Docket{}
	err := c.db.Collection(docketName).FindOne(ctx, filter, opts...).Decode(&docket)
	if err != nil {
		return nil, err
	}
	return docket, nil
}

func (c *docketDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Docket, error) {
	var dockets []models.Docket
	curr, err := c.db.Collection(docketName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &dockets)
	if err != nil {
		return nil, err
	}
	return dockets, nil
}

func (c *docketDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(docketName).CountDocuments(ctx, filter, opts...)
}

func (c *docketDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(docketName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *docketDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(docketName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *docketDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return c.db.Collection(docketName).UpdateMany(ctx, filter, update, opts...)
}

func (c *docketDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(docketName).DeleteOne(ctx, filter, opts...)
}

func (c *docketDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]bson.M, error) {
	curr, err := c.db.Collection(docketName).Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	var results []bson.M
	if err := curr.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

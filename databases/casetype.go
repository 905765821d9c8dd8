package databases

// go generate: mockery --name CaseTypeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rightsdesk/docket-api/models"
)

const caseTypeName = "casetypes"

// CaseTypeDatabase contains the methods to use with the case type database
type CaseTypeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseType, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseType, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type caseTypeDatabase struct {
	db DatabaseHelper
}

// NewCaseTypeDatabase initializes a new instance of case type database with the provided db connection
func NewCaseTypeDatabase(db DatabaseHelper) CaseTypeDatabase {
	return &caseTypeDatabase{
		db: db,
	}
}

func (c *caseTypeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseType, error) {
	caseType := &models.CaseType{}
	err := c.db.Collection(caseTypeName).FindOne(ctx, filter, opts...).Decode(&caseType)
	if err != nil {
		return nil, err
	}
	return caseType, nil
}

func (c *caseTypeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseType, error) {
	var caseTypes []models.CaseType
	curr, err := c.db.Collection(caseTypeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &caseTypes)
	if err != nil {
		return nil, err
	}
	return caseTypes, nil
}

func (c *caseTypeDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(caseTypeName).InsertOne(ctx, document, opts...)
	return res, err
}

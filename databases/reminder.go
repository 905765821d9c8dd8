package databases

// go generate: mockery --name ReminderDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rightsdesk/docket-api/models"
)

const reminderName = "reminders"

// ReminderDatabase contains the methods to use with the reminder database.
// Reminder documents are append-only.
type ReminderDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reminder, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type reminderDatabase struct {
	db DatabaseHelper
}

// NewReminderDatabase initializes a new instance of reminder database with the provided db connection
func NewReminderDatabase(db DatabaseHelper) ReminderDatabase {
	return &reminderDatabase{
		db: db,
	}
}

func (r *reminderDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reminder, error) {
	var reminders []models.Reminder
	curr, err := r.db.Collection(reminderName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &reminders)
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *reminderDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(reminderName).CountDocuments(ctx, filter, opts...)
}

func (r *reminderDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := r.db.Collection(reminderName).InsertOne(ctx, document, opts...)
	return res, err
}

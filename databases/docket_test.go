package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/databases/mocks"
	"github.com/rightsdesk/docket-api/models"
)

func TestNewDocketDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	docketDB := databases.NewDocketDatabase(db)

	assert.NotEmpty(t, docketDB)
}

func TestDocketDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Docket)
		(*arg).Details.CaseNumber = "HRC-IX-2025-0001"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "dockets").Return(collectionHelper)

	// Create new database with mocked Database interface
	docketDba := databases.NewDocketDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	docket, err := docketDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, docket)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with a filter the mock decodes successfully
	docket, err = docketDba.FindOne(context.Background(), bson.M{"error": false})

	assert.NoError(t, err)
	assert.Equal(t, "HRC-IX-2025-0001", docket.Details.CaseNumber)
}

func TestDocketDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelperErr databases.CursorHelper
	var cursorHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelperErr = &mocks.CursorHelper{}
	cursorHelperCorrect = &mocks.CursorHelper{}

	cursorHelperErr.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(errors.New("mocked-cursor-error"))
	cursorHelperErr.(*mocks.CursorHelper).
		On("Close", mock.Anything).
		Return(nil)

	cursorHelperCorrect.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Docket)
		*arg = []models.Docket{{Details: models.DocketDetails{CaseNumber: "HRC-IX-2025-0002"}}}
	})
	cursorHelperCorrect.(*mocks.CursorHelper).
		On("Close", mock.Anything).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(cursorHelperErr, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(cursorHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "dockets").Return(collectionHelper)

	docketDba := databases.NewDocketDatabase(dbHelper)

	dockets, err := docketDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, dockets)
	assert.EqualError(t, err, "mocked-cursor-error")

	dockets, err = docketDba.Find(context.Background(), bson.M{"error": false})

	assert.NoError(t, err)
	assert.Len(t, dockets, 1)
	assert.Equal(t, "HRC-IX-2025-0002", dockets[0].Details.CaseNumber)
}

func TestDocketDatabase_Aggregate(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]bson.M)
		*arg = []bson.M{{"_id": "case-type-1", "count": int32(2)}}
	})
	cursorHelper.(*mocks.CursorHelper).
		On("Close", mock.Anything).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Aggregate", mock.Anything, mock.Anything).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "dockets").Return(collectionHelper)

	docketDba := databases.NewDocketDatabase(dbHelper)

	groups, err := docketDba.Aggregate(context.Background(), []bson.M{
		{"$group": bson.M{"_id": "$docket.caseTypeID", "count": bson.M{"$sum": 1}}},
	})

	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "case-type-1", groups[0]["_id"])
}

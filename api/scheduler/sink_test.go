package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rightsdesk/docket-api/api/scheduler"
	"github.com/rightsdesk/docket-api/databases/mocks"
	"github.com/rightsdesk/docket-api/models"
)

func TestReminderSink_EmitInsertFailure(t *testing.T) {
	reminderDB := &mocks.ReminderDatabase{}
	reminderDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("write concern error"))

	sink := scheduler.NewReminderSink(reminderDB, &mocks.UserDatabase{}, "no-reply@rightsdesk.org", "RightsDesk Docket", nil)

	err := sink.Emit(context.Background(), models.ReminderDetails{
		CaseID:     primitive.NewObjectID().Hex(),
		CaseNumber: "HRC-IX-2025-0001",
		Kind:       models.ReminderPreDeadline,
		TriggerDay: 45,
	})
	assert.ErrorContains(t, err, "write concern error")
}

func TestReminderSink_EmitBroadcastsToRecipients(t *testing.T) {
	reminderDB := &mocks.ReminderDatabase{}
	reminderDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	// recipient lookup fails, email delivery is skipped but must not fail the
	// emission or suppress the broadcast
	userDB := &mocks.UserDatabase{}
	userDB.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	broadcasts := map[string]int{}
	broadcast := func(userID string, payload interface{}) {
		broadcasts[userID]++
		reminder, ok := payload.(models.Reminder)
		assert.True(t, ok)
		assert.Equal(t, "HRC-IX-2025-0002", reminder.Details.CaseNumber)
	}

	sink := scheduler.NewReminderSink(reminderDB, userDB, "no-reply@rightsdesk.org", "RightsDesk Docket", broadcast)

	err := sink.Emit(context.Background(), models.ReminderDetails{
		CaseID:     primitive.NewObjectID().Hex(),
		CaseNumber: "HRC-IX-2025-0002",
		Recipients: []string{"staff-1", "staff-2"},
		Kind:       models.ReminderOverdue,
		TriggerDay: 30,
		Deadline:   primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -30)),
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"staff-1": 1, "staff-2": 1}, broadcasts)
}

func TestReminderSink_EmitStampsCreatedAt(t *testing.T) {
	var inserted models.Reminder
	reminderDB := &mocks.ReminderDatabase{}
	reminderDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc interface{}) bool {
		reminder, ok := doc.(models.Reminder)
		if !ok {
			return false
		}
		inserted = reminder
		return true
	})).Return(nil, nil)

	sink := scheduler.NewReminderSink(reminderDB, &mocks.UserDatabase{}, "no-reply@rightsdesk.org", "RightsDesk Docket", nil)

	err := sink.Emit(context.Background(), models.ReminderDetails{
		CaseID:     primitive.NewObjectID().Hex(),
		CaseNumber: "HRC-IX-2025-0003",
		Kind:       models.ReminderPreDeadline,
		TriggerDay: 60,
	})
	assert.NoError(t, err)
	assert.False(t, inserted.ID.IsZero())
	assert.WithinDuration(t, time.Now(), inserted.Details.CreatedAt.Time(), time.Minute)
}

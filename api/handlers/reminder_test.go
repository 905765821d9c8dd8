package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rightsdesk/docket-api/api/handlers"
	"github.com/rightsdesk/docket-api/api/scheduler"
	mocksdb "github.com/rightsdesk/docket-api/databases/mocks"
	"github.com/rightsdesk/docket-api/models"
)

type recordingSink struct {
	emitted []models.ReminderDetails
}

func (r *recordingSink) Emit(_ context.Context, details models.ReminderDetails) error {
	r.emitted = append(r.emitted, details)
	return nil
}

func newTriggerJob(sink scheduler.ReminderSink) *scheduler.ReminderJob {
	caseTypeDB := &mocksdb.CaseTypeDatabase{}
	caseTypeDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.CaseType{ID: primitive.NewObjectID()}, nil)

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	return &scheduler.ReminderJob{
		Dockets:            docketDB,
		CaseTypes:          caseTypeDB,
		Reminders:          &mocksdb.ReminderDatabase{},
		Sink:               sink,
		Offsets:            []int{45, 50, 55, 58, 60},
		OverdueCadenceDays: 30,
		CaseTypeName:       "Legal Investigation",
	}
}

func TestReminder_TriggerHandlerRejectsBadSecret(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(handlers.SchedulerSecretHeader, "wrong-secret")

	rem := handlers.Reminder{Job: newTriggerJob(&recordingSink{}), Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestReminder_TriggerHandlerUnconfiguredSecretIsConfigError(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders", nil)
	if err != nil {
		t.Fatal(err)
	}

	// a blank configured secret must not mean "no auth"
	rem := handlers.Reminder{Job: newTriggerJob(&recordingSink{}), Secret: "", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp models.ErrorMessageResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, "scheduler secret not configured", resp.Response.Message)
}

func TestReminder_TriggerHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders?date=2025-06-15", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(handlers.SchedulerSecretHeader, "cron-secret")

	rem := handlers.Reminder{Job: newTriggerJob(&recordingSink{}), Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var report models.ReminderRunReport
	_ = json.Unmarshal(rr.Body.Bytes(), &report)
	assert.Equal(t, "2025-06-15", report.Date)
	assert.Equal(t, 0, report.Attempts)
	assert.NotEmpty(t, report.RunID)
}

func TestReminder_TriggerHandlerBadDate(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders?date=June+15th", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(handlers.SchedulerSecretHeader, "cron-secret")

	rem := handlers.Reminder{Job: newTriggerJob(&recordingSink{}), Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReminder_TestTriggerHandlerUnconfiguredDay(t *testing.T) {
	body, _ := json.Marshal(handlers.TestTriggerRequest{CaseNumber: "HRC-IX-2025-0001", TriggerDay: 47})
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders/test", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	rem := handlers.Reminder{Job: newTriggerJob(&recordingSink{}), Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TestTriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ErrorMessageResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, "trigger day not configured", resp.Response.Message)
}

func TestReminder_TestTriggerHandlerUnknownCase(t *testing.T) {
	body, _ := json.Marshal(handlers.TestTriggerRequest{CaseNumber: "HRC-XX-1999-9999", TriggerDay: 45})
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders/test", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	job := newTriggerJob(&recordingSink{})
	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))
	job.Dockets = docketDB

	rem := handlers.Reminder{Job: job, Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TestTriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReminder_TestTriggerHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(handlers.TestTriggerRequest{CaseNumber: "HRC-IX-2025-0001", TriggerDay: 50})
	req, err := http.NewRequest("POST", "/api/v1/scheduler/reminders/test", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	sink := &recordingSink{}
	job := newTriggerJob(sink)
	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Docket{
		ID: primitive.NewObjectID(),
		Details: models.DocketDetails{
			CaseNumber:       "HRC-IX-2025-0001",
			AssignedStaffIDs: []string{"staff-1"},
			Deadline:         primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, 10)),
		},
	}, nil)
	job.Dockets = docketDB

	rem := handlers.Reminder{Job: job, Secret: "cron-secret", RunBudget: time.Minute}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.TestTriggerHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var outcome models.ReminderOutcome
	_ = json.Unmarshal(rr.Body.Bytes(), &outcome)
	assert.Equal(t, models.OutcomeSuccess, outcome.Outcome)
	assert.Equal(t, 50, outcome.TriggerDay)
	assert.Len(t, sink.emitted, 1)
}

func TestReminder_RemindersByCaseIDHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reminders/case/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	reminderDB := &mocksdb.ReminderDatabase{}
	reminderDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	rem := handlers.Reminder{Reminders: reminderDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rem.RemindersByCaseIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

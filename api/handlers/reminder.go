package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/api/scheduler"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

// SchedulerSecretHeader carries the shared secret for the external cron trigger
const SchedulerSecretHeader = "X-Scheduler-Secret"

// Reminder exported for testing purposes
type Reminder struct {
	Job       *scheduler.ReminderJob
	Reminders databases.ReminderDatabase

	Secret    string
	RunBudget time.Duration
}

// TriggerHandler runs one reminder pass. It is meant for an external cron
// caller and is protected by a shared secret rather than staff auth. An
// optional date query parameter (YYYY-MM-DD) overrides the calendar date the
// pass evaluates, which lets operators replay a missed day.
func (rem Reminder) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	// a deployment without a secret is misconfigured, not open to everyone
	if rem.Secret == "" {
		config.ErrorStatus("scheduler secret not configured", http.StatusInternalServerError, w, errors.New("SCHEDULER_SECRET is not set"))
		return
	}
	if !rem.secretMatches(r) {
		config.ErrorStatus("invalid scheduler secret", http.StatusUnauthorized, w, errors.New("scheduler secret mismatch"))
		return
	}

	today := time.Now()
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			config.ErrorStatus("failed to parse date", http.StatusBadRequest, w, err)
			return
		}
		today = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), rem.RunBudget)
	defer cancel()

	report, err := rem.Job.Run(ctx, today)
	if err != nil {
		config.ErrorStatus("reminder run failed", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("reminder run triggered over http",
		"runId", report.RunID,
		"attempts", report.Attempts,
		"failures", report.Failures,
	)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(report)
}

func (rem Reminder) secretMatches(r *http.Request) bool {
	got := sha256.Sum256([]byte(r.Header.Get(SchedulerSecretHeader)))
	want := sha256.Sum256([]byte(rem.Secret))
	return subtle.ConstantTimeCompare(got[:], want[:]) == 1
}

// TestTriggerRequest fires a single reminder for one docket on demand
type TestTriggerRequest struct {
	CaseNumber string `json:"caseNumber" validate:"required"`
	TriggerDay int    `json:"triggerDay" validate:"required,gt=0"`
}

// TestTriggerHandler emits one pre-deadline reminder for the given case number
// at the given trigger day, so delivery can be verified without waiting for
// the scheduled date. The trigger day must be one of the configured offsets.
func (rem Reminder) TestTriggerHandler(w http.ResponseWriter, r *http.Request) {
	var req TestTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid test trigger payload", http.StatusBadRequest, w, err)
		return
	}

	outcome, err := rem.Job.RunManual(r.Context(), req.CaseNumber, req.TriggerDay)
	if errors.Is(err, scheduler.ErrTriggerDayNotConfigured) {
		config.ErrorStatus("trigger day not configured", http.StatusBadRequest, w, err)
		return
	}
	if errors.Is(err, scheduler.ErrUnknownCaseNumber) {
		config.ErrorStatus("case number not found", http.StatusNotFound, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("test trigger failed", http.StatusInternalServerError, w, err)
		return
	}

	if outcome.Outcome != models.OutcomeSuccess && outcome.Outcome != models.OutcomeSkipped {
		config.ErrorStatus("reminder emission failed", http.StatusInternalServerError, w, fmt.Errorf("emission outcome: %s", outcome.Outcome))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(outcome)
}

// RemindersByCaseIDHandler returns the reminder history for one docket
func (rem Reminder) RemindersByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rem.Reminders.Find(ctx, bson.M{"reminder.caseID": caseID})
	if err != nil {
		config.ErrorStatus("failed to get reminders by case ID", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Reminder{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

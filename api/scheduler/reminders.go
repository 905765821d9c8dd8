package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

// ErrTriggerDayNotConfigured is returned by the manual trigger when the
// requested day offset is not in the configured offset set.
var ErrTriggerDayNotConfigured = errors.New("trigger day is not in the configured offset set")

// ErrUnknownCaseNumber is returned by the manual trigger when no docket
// matches the given case number.
var ErrUnknownCaseNumber = errors.New("no docket found for case number")

// ReminderSink records a reminder event for a docket and its recipients.
// The collection write is the emission; email and live-feed delivery hang off it.
type ReminderSink interface {
	Emit(ctx context.Context, details models.ReminderDetails) error
}

// ReminderJob walks the open investigation dockets once per invocation and
// decides, per docket, whether a reminder fires today. Pre-deadline reminders
// fire when the docket's age matches a configured offset; overdue reminders
// recur every OverdueCadenceDays past the deadline. The two clocks measure
// from different anchors, so one docket may fire both in a single run.
type ReminderJob struct {
	Dockets   databases.DocketDatabase
	CaseTypes databases.CaseTypeDatabase
	Reminders databases.ReminderDatabase
	Sink      ReminderSink

	// Offsets are days since receipt at which pre-deadline reminders fire
	Offsets []int
	// OverdueCadenceDays is the recurrence interval past the deadline
	OverdueCadenceDays int
	// CaseTypeName names the case type the daily scan targets
	CaseTypeName string
	// Dedupe suppresses re-emission for a (docket, kind, triggerDay) that
	// already has a recorded reminder, making operator re-runs safe
	Dedupe bool
}

// Run executes one scheduler pass for the given calendar date. The date is a
// parameter rather than a clock read so every day offset is testable.
//
// A case-type or scan failure aborts the whole run; a per-docket emission
// failure is recorded in the report and the loop continues.
func (j *ReminderJob) Run(ctx context.Context, today time.Time) (models.ReminderRunReport, error) {
	report := models.ReminderRunReport{
		RunID:   uuid.New().String(),
		Date:    today.Format("2006-01-02"),
		Results: []models.ReminderOutcome{},
	}

	caseType, err := j.CaseTypes.FindOne(ctx, bson.M{"caseType.name": j.CaseTypeName})
	if err != nil {
		return report, fmt.Errorf("failed to resolve case type %q: %w", j.CaseTypeName, err)
	}

	openFilter := bson.M{
		"docket.caseTypeID": caseType.ID.Hex(),
		"docket.status":     bson.M{"$in": []string{"", models.StatusPending}},
	}
	dockets, err := j.Dockets.Find(ctx, openFilter)
	if err != nil {
		return report, fmt.Errorf("failed to scan open dockets: %w", err)
	}

	zap.S().Infow("reminder run started",
		"runId", report.RunID,
		"date", report.Date,
		"openDockets", len(dockets),
	)

	for _, docket := range dockets {
		// a blown run budget fails the invocation rather than silently
		// truncating the scan; the next scheduled run retries in full
		if ctx.Err() != nil {
			return report, fmt.Errorf("run budget exceeded after %d attempts: %w", report.Attempts, ctx.Err())
		}

		daysSinceReceived := models.DaysBetween(docket.Details.DateReceived.Time(), today)
		daysPastDeadline := models.DaysBetween(docket.Details.Deadline.Time(), today)

		if containsDay(j.Offsets, daysSinceReceived) {
			j.emit(ctx, &report, docket, models.ReminderPreDeadline, daysSinceReceived)
		}

		if daysPastDeadline > 0 && j.OverdueCadenceDays > 0 && daysPastDeadline%j.OverdueCadenceDays == 0 {
			j.emit(ctx, &report, docket, models.ReminderOverdue, daysPastDeadline)
		}
	}

	zap.S().Infow("reminder run complete",
		"runId", report.RunID,
		"attempts", report.Attempts,
		"successes", report.Successes,
		"failures", report.Failures,
		"skipped", report.Skipped,
	)
	return report, nil
}

// RunManual emits a single pre-deadline reminder for one docket at an explicit
// trigger day, bypassing the daily scan. Used to verify delivery without
// waiting for the scheduled date.
func (j *ReminderJob) RunManual(ctx context.Context, caseNumber string, triggerDay int) (models.ReminderOutcome, error) {
	if !containsDay(j.Offsets, triggerDay) {
		return models.ReminderOutcome{}, fmt.Errorf("%w: %d", ErrTriggerDayNotConfigured, triggerDay)
	}

	docket, err := j.Dockets.FindOne(ctx, bson.M{"docket.caseNumber": caseNumber})
	if err != nil {
		return models.ReminderOutcome{}, fmt.Errorf("%w: %s", ErrUnknownCaseNumber, caseNumber)
	}

	report := models.ReminderRunReport{Results: []models.ReminderOutcome{}}
	j.emit(ctx, &report, *docket, models.ReminderPreDeadline, triggerDay)
	return report.Results[0], nil
}

// emit attempts one reminder emission and records its outcome in the report.
// Failures never propagate; they are isolated to the docket they belong to.
func (j *ReminderJob) emit(ctx context.Context, report *models.ReminderRunReport, docket models.Docket, kind string, triggerDay int) {
	outcome := models.ReminderOutcome{
		CaseNumber: docket.Details.CaseNumber,
		Kind:       kind,
		TriggerDay: triggerDay,
	}

	if j.Dedupe {
		n, err := j.Reminders.CountDocuments(ctx, bson.M{
			"reminder.caseID":     docket.ID.Hex(),
			"reminder.kind":       kind,
			"reminder.triggerDay": triggerDay,
		})
		if err != nil {
			report.Attempts++
			report.Failures++
			outcome.Outcome = fmt.Sprintf("dedupe check failed: %v", err)
			report.Results = append(report.Results, outcome)
			zap.S().Errorw("reminder dedupe check failed",
				"caseNumber", docket.Details.CaseNumber,
				"kind", kind,
				"triggerDay", triggerDay,
				"error", err,
			)
			return
		}
		if n > 0 {
			report.Skipped++
			outcome.Outcome = models.OutcomeSkipped
			report.Results = append(report.Results, outcome)
			return
		}
	}

	report.Attempts++
	err := j.Sink.Emit(ctx, models.ReminderDetails{
		CaseID:     docket.ID.Hex(),
		CaseNumber: docket.Details.CaseNumber,
		Recipients: docket.Details.AssignedStaffIDs,
		Kind:       kind,
		TriggerDay: triggerDay,
		Deadline:   docket.Details.Deadline,
	})
	if err != nil {
		report.Failures++
		outcome.Outcome = err.Error()
		zap.S().Errorw("reminder emission failed",
			"caseNumber", docket.Details.CaseNumber,
			"kind", kind,
			"triggerDay", triggerDay,
			"error", err,
		)
	} else {
		report.Successes++
		outcome.Outcome = models.OutcomeSuccess
	}
	report.Results = append(report.Results, outcome)
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Reminder kinds. Pre-deadline reminders are anchored to days since receipt,
// overdue reminders to days past the deadline.
const (
	ReminderPreDeadline = "pre-deadline"
	ReminderOverdue     = "overdue"
)

// Reminder holds the structure for the reminders collection in mongo. Documents
// are append-only; delivery retention is owned by the notification collaborator.
type Reminder struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ReminderDetails    `json:"reminder" bson:"reminder"`
	Version int32              `json:"__v" bson:"__v"`
}

// ReminderDetails holds the structure for the inner reminder details
type ReminderDetails struct {
	CaseID     string   `json:"caseID" bson:"caseID"`
	CaseNumber string   `json:"caseNumber" bson:"caseNumber"`
	Recipients []string `json:"recipients" bson:"recipients"`

	// Kind is ReminderPreDeadline or ReminderOverdue
	Kind string `json:"kind" bson:"kind"`
	// TriggerDay is the day offset that fired this reminder: days since receipt
	// for pre-deadline, days past deadline for overdue
	TriggerDay int `json:"triggerDay" bson:"triggerDay"`

	// Deadline rides along so the recipient can compute days remaining itself
	Deadline primitive.DateTime `json:"deadline" bson:"deadline"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// Reminder run outcome strings reported per docket.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped: already recorded"
)

// ReminderOutcome records one emission attempt in a scheduler run
type ReminderOutcome struct {
	CaseNumber string `json:"caseNumber"`
	Kind       string `json:"kind"`
	TriggerDay int    `json:"triggerDay"`
	Outcome    string `json:"outcome"`
}

// ReminderRunReport is the externally visible artifact of a scheduler run,
// returned whether the run was fully or partially successful so operators can
// tell a clean run from one with per-docket failures.
type ReminderRunReport struct {
	RunID     string            `json:"runId"`
	Date      string            `json:"date"`
	Attempts  int               `json:"attempts"`
	Successes int               `json:"successes"`
	Failures  int               `json:"failures"`
	Skipped   int               `json:"skipped"`
	Results   []ReminderOutcome `json:"results"`
}

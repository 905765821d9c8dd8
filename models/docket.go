package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Raw lifecycle values stored on a docket. The empty string is the default
// sentinel written at intake and is treated the same as StatusPending.
const (
	StatusPending    = "PENDING"
	StatusForReview  = "FOR_REVIEW"
	StatusCompleted  = "COMPLETED"
	StatusTerminated = "TERMINATED"
	StatusVoid       = "VOID"
)

// Docket holds the structure for the dockets collection in mongo
type Docket struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details DocketDetails      `json:"docket" bson:"docket"`
	Version int32              `json:"__v" bson:"__v"`
}

// DocketDetails holds the structure for the inner docket details
type DocketDetails struct {
	// CaseNumber is assigned at intake (PREFIX-REGION-YEAR-SEQUENCE) and never changes
	CaseNumber string `json:"caseNumber" bson:"caseNumber"`
	Region     string `json:"region" bson:"region"`

	Complainant string `json:"complainant" bson:"complainant"`
	Respondent  string `json:"respondent" bson:"respondent"`
	Summary     string `json:"summary" bson:"summary"`

	// DateReceived is the docket's day zero; immutable after intake
	DateReceived primitive.DateTime `json:"dateReceived" bson:"dateReceived"`
	// Deadline is the statutory due date; only a docket edit may move it
	Deadline primitive.DateTime `json:"deadline" bson:"deadline"`

	// Status holds the raw lifecycle value ("" defaults to pending)
	Status string `json:"status" bson:"status"`

	CaseTypeID       string   `json:"caseTypeID" bson:"caseTypeID"`
	AssignedStaffIDs []string `json:"assignedStaffIDs" bson:"assignedStaffIDs"`

	EvidencePhotos []string `json:"evidencePhotos" bson:"evidencePhotos"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// DocketResponse wraps a docket with its resolved display status for API responses
type DocketResponse struct {
	Docket
	DisplayStatus string `json:"displayStatus"`
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

var (
	// Page denotes the starting Page for pagination results
	Page = 0

	validate = validator.New()
)

// Docket exported for testing purposes
type Docket struct {
	DB        databases.DocketDatabase
	CaseTypes databases.CaseTypeDatabase

	UrgentWindowDays int
	CaseNumberPrefix string
}

// DocketCreateRequest is the intake payload for a new docket
type DocketCreateRequest struct {
	Region       string   `json:"region" validate:"required,alpha,uppercase"`
	Complainant  string   `json:"complainant" validate:"required"`
	Respondent   string   `json:"respondent"`
	Summary      string   `json:"summary"`
	DateReceived string   `json:"dateReceived" validate:"required,datetime=2006-01-02"`
	Deadline     string   `json:"deadline" validate:"required,datetime=2006-01-02"`
	CaseTypeID   string   `json:"caseTypeID" validate:"required"`
	AssignedIDs  []string `json:"assignedStaffIDs"`
}

// CreateDocketHandler creates a docket at intake. The case number is assigned
// here and never changes afterwards.
func (d Docket) CreateDocketHandler(w http.ResponseWriter, r *http.Request) {
	var req DocketCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid docket payload", http.StatusBadRequest, w, err)
		return
	}

	dateReceived, _ := time.Parse("2006-01-02", req.DateReceived)
	deadline, _ := time.Parse("2006-01-02", req.Deadline)
	if deadline.Before(dateReceived) {
		config.ErrorStatus("invalid docket payload", http.StatusBadRequest, w, fmt.Errorf("deadline %s precedes dateReceived %s", req.Deadline, req.DateReceived))
		return
	}

	ctID, err := primitive.ObjectIDFromHex(req.CaseTypeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := d.CaseTypes.FindOne(ctx, bson.M{"_id": ctID}); err != nil {
		config.ErrorStatus("case type does not exist", http.StatusBadRequest, w, err)
		return
	}

	caseNumber, err := d.nextCaseNumber(ctx, req.Region, dateReceived.Year())
	if err != nil {
		config.ErrorStatus("failed to assign case number", http.StatusInternalServerError, w, err)
		return
	}

	docket := models.Docket{
		ID: primitive.NewObjectID(),
		Details: models.DocketDetails{
			CaseNumber:       caseNumber,
			Region:           req.Region,
			Complainant:      req.Complainant,
			Respondent:       req.Respondent,
			Summary:          req.Summary,
			DateReceived:     primitive.NewDateTimeFromTime(dateReceived),
			Deadline:         primitive.NewDateTimeFromTime(deadline),
			Status:           models.StatusPending,
			CaseTypeID:       req.CaseTypeID,
			AssignedStaffIDs: req.AssignedIDs,
		},
	}
	docket.Details.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	docket.Details.UpdatedAt = docket.Details.CreatedAt

	_, err = d.DB.InsertOne(ctx, docket)
	if err != nil {
		config.ErrorStatus("failed to create docket", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Docket created successfully",
		"id":         docket.ID.Hex(),
		"caseNumber": caseNumber,
	})
}

// nextCaseNumber builds PREFIX-REGION-YEAR-SEQUENCE, with the sequence taken
// from the count of dockets already registered for that region and year
func (d Docket) nextCaseNumber(ctx context.Context, region string, year int) (string, error) {
	n, err := d.DB.CountDocuments(ctx, bson.M{
		"docket.region":     region,
		"docket.caseNumber": bson.M{"$regex": fmt.Sprintf("-%d-", year)},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d-%04d", d.CaseNumberPrefix, region, year, n+1), nil
}

// DocketByIDHandler returns a docket by ID with its resolved display status
func (d Docket) DocketByIDHandler(w http.ResponseWriter, r *http.Request) {
	docketID := mux.Vars(r)["docket_id"]

	zap.S().Debugf("docket_id: %v", docketID)

	dID, err := primitive.ObjectIDFromHex(docketID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.FindOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to get docket by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(d.toResponse(*dbResp))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DocketByCaseNumberHandler returns a docket by its case number
func (d Docket) DocketByCaseNumberHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.FindOne(ctx, bson.M{"docket.caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get docket by case number", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(d.toResponse(*dbResp))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DocketHandler returns a paginated list of dockets, optionally filtered by
// status, region, case type or assigned staff member
func (d Docket) DocketHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["docket.status"] = status
	}
	if region := r.URL.Query().Get("region"); region != "" {
		filter["docket.region"] = region
	}
	if caseTypeID := r.URL.Query().Get("case_type_id"); caseTypeID != "" {
		filter["docket.caseTypeID"] = caseTypeID
	}
	if staffID := r.URL.Query().Get("assigned_staff_id"); staffID != "" {
		filter["docket.assignedStaffIDs"] = staffID
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.Find(ctx, filter, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get dockets", http.StatusNotFound, w, err)
		return
	}

	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	resp := []models.DocketResponse{}
	for _, docket := range dbResp {
		resp = append(resp, d.toResponse(docket))
	}
	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// toResponse resolves the display status against today's date. A docket that
// cannot be resolved keeps an empty display status rather than failing the
// whole listing.
func (d Docket) toResponse(docket models.Docket) models.DocketResponse {
	resp := models.DocketResponse{Docket: docket}
	display, err := models.ResolveStatus(time.Now(), docket.Details.Deadline.Time(), docket.Details.Status, d.UrgentWindowDays)
	if err != nil {
		zap.S().Warnw("failed to resolve display status",
			"caseNumber", docket.Details.CaseNumber,
			"error", err,
		)
		return resp
	}
	resp.DisplayStatus = display
	return resp
}

// UpdateDocketHandler updates a docket's details. The case number, receipt
// date and creation timestamp are immutable and silently dropped from the
// incoming changes.
func (d Docket) UpdateDocketHandler(w http.ResponseWriter, r *http.Request) {
	docketID := mux.Vars(r)["docket_id"]

	dID, err := primitive.ObjectIDFromHex(docketID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	// Decode the incoming changes
	var updatedFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updatedFields); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	delete(updatedFields, "caseNumber")
	delete(updatedFields, "dateReceived")
	delete(updatedFields, "createdAt")

	if status, ok := updatedFields["status"].(string); ok && !validRawStatus(status) {
		config.ErrorStatus("unknown status value", http.StatusBadRequest, w, fmt.Errorf("status %q is not a known lifecycle value", status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// A deadline change must stay a parseable date and may never move before
	// the receipt date
	if rawDeadline, ok := updatedFields["deadline"]; ok {
		deadlineStr, ok := rawDeadline.(string)
		if !ok {
			config.ErrorStatus("failed to parse deadline", http.StatusBadRequest, w, fmt.Errorf("deadline must be a %q date string", "2006-01-02"))
			return
		}
		deadline, err := time.Parse("2006-01-02", deadlineStr)
		if err != nil {
			config.ErrorStatus("failed to parse deadline", http.StatusBadRequest, w, err)
			return
		}
		existing, err := d.DB.FindOne(ctx, bson.M{"_id": dID})
		if err != nil {
			config.ErrorStatus("failed to get docket by ID", http.StatusNotFound, w, err)
			return
		}
		if deadline.Before(existing.Details.DateReceived.Time()) {
			config.ErrorStatus("invalid deadline", http.StatusBadRequest, w, fmt.Errorf("deadline %s precedes dateReceived %s", deadlineStr, existing.Details.DateReceived.Time().Format("2006-01-02")))
			return
		}
		updatedFields["deadline"] = primitive.NewDateTimeFromTime(deadline)
	}

	// Prepare the update document
	update := bson.M{}
	for key, value := range updatedFields {
		update["docket."+key] = value
	}

	// Add the updatedAt field to track the update time
	update["docket.updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	err = d.DB.UpdateOne(ctx, bson.M{"_id": dID}, bson.M{"$set": update})
	if err != nil {
		config.ErrorStatus("failed to update docket", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Docket updated successfully",
	})
}

// BulkStatusUpdateRequest moves a batch of dockets to a new lifecycle status
type BulkStatusUpdateRequest struct {
	DocketIDs []string `json:"docketIDs" validate:"required,min=1"`
	Status    string   `json:"status" validate:"required"`
}

// BulkStatusUpdateHandler sets the status on a batch of dockets at once
func (d Docket) BulkStatusUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid bulk status payload", http.StatusBadRequest, w, err)
		return
	}
	if !validRawStatus(req.Status) {
		config.ErrorStatus("unknown status value", http.StatusBadRequest, w, fmt.Errorf("status %q is not a known lifecycle value", req.Status))
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.DocketIDs))
	for _, id := range req.DocketIDs {
		dID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		ids = append(ids, dID)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	modified, err := d.DB.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"docket.status":    req.Status,
			"docket.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update docket statuses", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Docket statuses updated successfully",
		"modified": modified,
	})
}

// UpdateAssigneesHandler replaces the set of staff assigned to a docket
func (d Docket) UpdateAssigneesHandler(w http.ResponseWriter, r *http.Request) {
	docketID := mux.Vars(r)["docket_id"]

	dID, err := primitive.ObjectIDFromHex(docketID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		AssignedStaffIDs []string `json:"assignedStaffIDs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = d.DB.UpdateOne(ctx, bson.M{"_id": dID}, bson.M{"$set": bson.M{
		"docket.assignedStaffIDs": body.AssignedStaffIDs,
		"docket.updatedAt":        primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update docket assignees", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Docket assignees updated successfully",
	})
}

// DeleteDocketHandler deletes a docket by ID
func (d Docket) DeleteDocketHandler(w http.ResponseWriter, r *http.Request) {
	docketID := mux.Vars(r)["docket_id"]

	dID, err := primitive.ObjectIDFromHex(docketID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = d.DB.DeleteOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to delete docket", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Docket deleted successfully",
	})
}

func validRawStatus(status string) bool {
	switch status {
	case "", models.StatusPending, models.StatusForReview, models.StatusCompleted, models.StatusTerminated, models.StatusVoid:
		return true
	}
	return false
}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}

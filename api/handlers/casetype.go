package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

// CaseType exported for testing purposes
type CaseType struct {
	DB databases.CaseTypeDatabase
}

// CaseTypeCreateRequest is the payload for registering a case type
type CaseTypeCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateCaseTypeHandler creates a case type
func (ct CaseType) CreateCaseTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req CaseTypeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid case type payload", http.StatusBadRequest, w, err)
		return
	}

	caseType := models.CaseType{
		ID: primitive.NewObjectID(),
		Details: models.CaseTypeDetails{
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
			UpdatedAt:   primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := ct.DB.InsertOne(ctx, caseType)
	if err != nil {
		config.ErrorStatus("failed to create case type", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Case type created successfully",
		"id":      caseType.ID.Hex(),
	})
}

// CaseTypeByIDHandler returns a case type by ID
func (ct CaseType) CaseTypeByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseTypeID := mux.Vars(r)["case_type_id"]

	ctID, err := primitive.ObjectIDFromHex(caseTypeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := ct.DB.FindOne(ctx, bson.M{"_id": ctID})
	if err != nil {
		config.ErrorStatus("failed to get case type by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseTypeHandler returns all case types
func (ct CaseType) CaseTypeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := ct.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get case types", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.CaseType{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

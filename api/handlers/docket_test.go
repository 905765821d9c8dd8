package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rightsdesk/docket-api/api/handlers"
	mocksdb "github.com/rightsdesk/docket-api/databases/mocks"
	"github.com/rightsdesk/docket-api/models"
)

func TestDocket_CreateDocketHandlerSuccess(t *testing.T) {
	caseTypeID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"region":       "IX",
		"complainant":  "A. Complainant",
		"respondent":   "Some Agency",
		"summary":      "Alleged unlawful detention",
		"dateReceived": "2025-03-01",
		"deadline":     "2025-04-30",
		"caseTypeID":   caseTypeID.Hex(),
	})
	req, err := http.NewRequest("POST", "/api/v1/docket", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	caseTypeDB := &mocksdb.CaseTypeDatabase{}
	caseTypeDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.CaseType{ID: caseTypeID}, nil)

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil)
	docketDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	d := handlers.Docket{DB: docketDB, CaseTypes: caseTypeDB, UrgentWindowDays: 5, CaseNumberPrefix: "HRC"}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.CreateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, "HRC-IX-2025-0003", resp["caseNumber"])
}

func TestDocket_CreateDocketHandlerDeadlineBeforeReceipt(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"region":       "IX",
		"complainant":  "A. Complainant",
		"dateReceived": "2025-03-01",
		"deadline":     "2025-02-01",
		"caseTypeID":   primitive.NewObjectID().Hex(),
	})
	req, err := http.NewRequest("POST", "/api/v1/docket", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	d := handlers.Docket{DB: &mocksdb.DocketDatabase{}, CaseTypes: &mocksdb.CaseTypeDatabase{}, CaseNumberPrefix: "HRC"}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.CreateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocket_CreateDocketHandlerMissingFields(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"region": "IX",
	})
	req, err := http.NewRequest("POST", "/api/v1/docket", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	d := handlers.Docket{DB: &mocksdb.DocketDatabase{}, CaseTypes: &mocksdb.CaseTypeDatabase{}, CaseNumberPrefix: "HRC"}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.CreateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocket_DocketByIDHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/docket/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"docket_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	d := handlers.Docket{DB: &mocksdb.DocketDatabase{}, CaseTypes: &mocksdb.CaseTypeDatabase{}}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DocketByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}

func TestDocket_DocketByIDHandlerSuccess(t *testing.T) {
	docketID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/docket/"+docketID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docket := &models.Docket{
		ID: docketID,
		Details: models.DocketDetails{
			CaseNumber: "HRC-IX-2025-0001",
			Status:     models.StatusPending,
			Deadline:   primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, 100)),
		},
	}
	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(docket, nil)

	d := handlers.Docket{DB: docketDB, UrgentWindowDays: 5}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DocketByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.DocketResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, "HRC-IX-2025-0001", resp.Details.CaseNumber)
	assert.Equal(t, models.DisplayActive, resp.DisplayStatus)
}

func TestDocket_DocketByIDHandlerOverdue(t *testing.T) {
	docketID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/docket/"+docketID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docket := &models.Docket{
		ID: docketID,
		Details: models.DocketDetails{
			CaseNumber: "HRC-IX-2025-0002",
			Status:     "",
			Deadline:   primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -3)),
		},
	}
	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(docket, nil)

	d := handlers.Docket{DB: docketDB, UrgentWindowDays: 5}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DocketByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.DocketResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, models.DisplayOverdue, resp.DisplayStatus)
}

func TestDocket_DocketHandlerFailedToFind(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/dockets", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get dockets", Error: "mongo: no documents in result"}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}

func TestDocket_DocketHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/dockets", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestDocket_UpdateDocketHandlerDropsImmutableFields(t *testing.T) {
	docketID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"caseNumber":   "HRC-XX-1999-9999",
		"dateReceived": "2000-01-01",
		"summary":      "Updated summary",
	})
	req, err := http.NewRequest("PATCH", "/api/v1/docket/"+docketID.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("UpdateOne", mock.Anything, mock.Anything, mock.MatchedBy(func(update interface{}) bool {
		set := update.(bson.M)["$set"].(bson.M)
		_, hasCaseNumber := set["docket.caseNumber"]
		_, hasDateReceived := set["docket.dateReceived"]
		_, hasSummary := set["docket.summary"]
		return !hasCaseNumber && !hasDateReceived && hasSummary
	})).Return(nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UpdateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	docketDB.AssertExpectations(t)
}

func TestDocket_UpdateDocketHandlerRejectsMalformedDeadline(t *testing.T) {
	docketID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"deadline": "not-a-date",
	})
	req, err := http.NewRequest("PATCH", "/api/v1/docket/"+docketID.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UpdateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	docketDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocket_UpdateDocketHandlerRejectsDeadlineBeforeReceipt(t *testing.T) {
	docketID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"deadline": "1990-01-01",
	})
	req, err := http.NewRequest("PATCH", "/api/v1/docket/"+docketID.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Docket{
		ID: docketID,
		Details: models.DocketDetails{
			CaseNumber:   "HRC-IX-2025-0001",
			DateReceived: primitive.NewDateTimeFromTime(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
			Deadline:     primitive.NewDateTimeFromTime(time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)),
		},
	}, nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UpdateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	docketDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocket_UpdateDocketHandlerStoresDeadlineAsDate(t *testing.T) {
	docketID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"deadline": "2025-06-30",
	})
	req, err := http.NewRequest("PATCH", "/api/v1/docket/"+docketID.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Docket{
		ID: docketID,
		Details: models.DocketDetails{
			CaseNumber:   "HRC-IX-2025-0001",
			DateReceived: primitive.NewDateTimeFromTime(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
			Deadline:     primitive.NewDateTimeFromTime(time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)),
		},
	}, nil)
	docketDB.On("UpdateOne", mock.Anything, mock.Anything, mock.MatchedBy(func(update interface{}) bool {
		set := update.(bson.M)["$set"].(bson.M)
		deadline, ok := set["docket.deadline"].(primitive.DateTime)
		if !ok {
			return false
		}
		return deadline.Time().UTC().Format("2006-01-02") == "2025-06-30"
	})).Return(nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.UpdateDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	docketDB.AssertExpectations(t)
}

func TestDocket_BulkStatusUpdateHandlerUnknownStatus(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"docketIDs": []string{primitive.NewObjectID().Hex()},
		"status":    "ARCHIVED",
	})
	req, err := http.NewRequest("PUT", "/api/v1/dockets/status", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	d := handlers.Docket{DB: &mocksdb.DocketDatabase{}}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.BulkStatusUpdateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "unknown status value", Error: fmt.Sprintf("status %q is not a known lifecycle value", "ARCHIVED")}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}

func TestDocket_BulkStatusUpdateHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"docketIDs": []string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()},
		"status":    models.StatusCompleted,
	})
	req, err := http.NewRequest("PUT", "/api/v1/dockets/status", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.BulkStatusUpdateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, float64(2), resp["modified"])
}

func TestDocket_DeleteDocketHandlerSuccess(t *testing.T) {
	docketID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/docket/"+docketID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"docket_id": docketID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	docketDB := &mocksdb.DocketDatabase{}
	docketDB.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)

	d := handlers.Docket{DB: docketDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DeleteDocketHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

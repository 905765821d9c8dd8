package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

// Dashboard exported for testing purposes
type Dashboard struct {
	DB        databases.DocketDatabase
	CaseTypes databases.CaseTypeDatabase

	UrgentWindowDays int
}

// DashboardSummary is the aggregate view the role dashboards are built from
type DashboardSummary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByRegion   map[string]int `json:"byRegion"`
	ByCaseType map[string]int `json:"byCaseType"`

	// OverdueCases lists the dockets currently past their deadline, worst first
	OverdueCases []models.DocketResponse `json:"overdueCases"`
}

// SummaryHandler returns docket counts grouped by display status and region.
// Display statuses are resolved against today's date at request time, so the
// same data set answers differently as deadlines approach.
func (d Dashboard) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if caseTypeID := r.URL.Query().Get("case_type_id"); caseTypeID != "" {
		filter["docket.caseTypeID"] = caseTypeID
	}
	if region := r.URL.Query().Get("region"); region != "" {
		filter["docket.region"] = region
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dockets, err := d.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get dockets for summary", http.StatusInternalServerError, w, err)
		return
	}

	byCaseType, err := d.caseTypeCounts(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to aggregate case type counts", http.StatusInternalServerError, w, err)
		return
	}

	today := time.Now()
	summary := DashboardSummary{
		Total:        len(dockets),
		ByStatus:     map[string]int{},
		ByRegion:     map[string]int{},
		ByCaseType:   byCaseType,
		OverdueCases: []models.DocketResponse{},
	}

	for _, docket := range dockets {
		summary.ByRegion[docket.Details.Region]++

		display, err := models.ResolveStatus(today, docket.Details.Deadline.Time(), docket.Details.Status, d.UrgentWindowDays)
		if err != nil {
			zap.S().Warnw("failed to resolve display status for summary",
				"caseNumber", docket.Details.CaseNumber,
				"error", err,
			)
			continue
		}
		summary.ByStatus[display]++

		if display == models.DisplayOverdue {
			summary.OverdueCases = append(summary.OverdueCases, models.DocketResponse{Docket: docket, DisplayStatus: display})
		}
	}

	// worst first: the docket furthest past its deadline leads the list
	sort.Slice(summary.OverdueCases, func(i, j int) bool {
		return summary.OverdueCases[i].Details.Deadline < summary.OverdueCases[j].Details.Deadline
	})

	b, err := json.Marshal(summary)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// caseTypeCounts groups the matching dockets by case type in mongo and maps
// the stored case type IDs back to their names. A docket whose case type no
// longer exists is counted under the raw ID.
func (d Dashboard) caseTypeCounts(ctx context.Context, filter bson.M) (map[string]int, error) {
	groups, err := d.DB.Aggregate(ctx, []bson.M{
		{"$match": filter},
		{"$group": bson.M{"_id": "$docket.caseTypeID", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}

	caseTypes, err := d.CaseTypes.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	for _, ct := range caseTypes {
		names[ct.ID.Hex()] = ct.Details.Name
	}

	counts := map[string]int{}
	for _, group := range groups {
		id, _ := group["_id"].(string)
		name, ok := names[id]
		if !ok {
			name = id
		}
		counts[name] = toCount(group["count"])
	}
	return counts, nil
}

// toCount normalizes the numeric type the mongo driver decodes $sum into
func toCount(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

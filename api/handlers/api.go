package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/api/scheduler"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
)

// App stores the router, db connection and scheduler, so they can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	hub := NewNotificationHub()

	docketDB := databases.NewDocketDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper)
	caseTypeDB := databases.NewCaseTypeDatabase(a.dbHelper)
	reminderDB := databases.NewReminderDatabase(a.dbHelper)

	sink := scheduler.NewReminderSink(reminderDB, userDB, a.Config.FromEmail, a.Config.FromName, hub.Broadcast)
	job := &scheduler.ReminderJob{
		Dockets:            docketDB,
		CaseTypes:          caseTypeDB,
		Reminders:          reminderDB,
		Sink:               sink,
		Offsets:            a.Config.ReminderOffsets,
		OverdueCadenceDays: a.Config.OverdueCadenceDays,
		CaseTypeName:       a.Config.InvestigationCaseType,
		Dedupe:             a.Config.DedupeReminders,
	}
	a.Scheduler = scheduler.NewScheduler(&a.Config, job)

	d := Docket{DB: docketDB, CaseTypes: caseTypeDB, UrgentWindowDays: a.Config.UrgentWindowDays, CaseNumberPrefix: a.Config.CaseNumberPrefix}
	u := User{DB: userDB, FromEmail: a.Config.FromEmail, FromName: a.Config.FromName, BaseURL: a.Config.BaseURL}
	ct := CaseType{DB: caseTypeDB}
	rem := Reminder{Job: job, Reminders: reminderDB, Secret: a.Config.SchedulerSecret, RunBudget: a.Config.RunBudget}
	dash := Dashboard{DB: docketDB, CaseTypes: caseTypeDB, UrgentWindowDays: a.Config.UrgentWindowDays}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// websocket connections outlive the request timeout, so this route is
	// registered before the timed subrouter
	r.Handle("/api/v1/notifications/ws", api.Middleware(http.HandlerFunc(hub.ServeWS)))

	requestTimeout := a.Config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/docket", api.Middleware(http.HandlerFunc(d.CreateDocketHandler))).Methods("POST")
	apiCreate.Handle("/docket/{docket_id}", api.Middleware(http.HandlerFunc(d.DocketByIDHandler))).Methods("GET")
	apiCreate.Handle("/docket/{docket_id}", api.Middleware(http.HandlerFunc(d.UpdateDocketHandler))).Methods("PATCH")
	apiCreate.Handle("/docket/{docket_id}", api.RequireRole(models.RoleAdmin)(http.HandlerFunc(d.DeleteDocketHandler))).Methods("DELETE")
	apiCreate.Handle("/docket/{docket_id}/assignees", api.RequireRole(models.RoleChief, models.RoleDirector, models.RoleAdmin)(http.HandlerFunc(d.UpdateAssigneesHandler))).Methods("PUT")
	apiCreate.Handle("/dockets", api.Middleware(http.HandlerFunc(d.DocketHandler))).Methods("GET")
	apiCreate.Handle("/dockets/case-number/{case_number}", api.Middleware(http.HandlerFunc(d.DocketByCaseNumberHandler))).Methods("GET")
	apiCreate.Handle("/dockets/status", api.RequireRole(models.RoleChief, models.RoleDirector, models.RoleAdmin)(http.HandlerFunc(d.BulkStatusUpdateHandler))).Methods("PUT")

	apiCreate.Handle("/user/create-user", api.RequireRole(models.RoleAdmin)(http.HandlerFunc(u.UserCreateHandler))).Methods("POST")
	apiCreate.Handle("/user/forgot-password", http.HandlerFunc(u.ForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/user/reset-password", http.HandlerFunc(u.ResetPasswordHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/deactivate", api.RequireRole(models.RoleAdmin)(http.HandlerFunc(u.DeactivateUserHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users", api.Middleware(http.HandlerFunc(u.UsersHandler))).Methods("GET")

	apiCreate.Handle("/casetype", api.RequireRole(models.RoleAdmin)(http.HandlerFunc(ct.CreateCaseTypeHandler))).Methods("POST")
	apiCreate.Handle("/casetype/{case_type_id}", api.Middleware(http.HandlerFunc(ct.CaseTypeByIDHandler))).Methods("GET")
	apiCreate.Handle("/casetypes", api.Middleware(http.HandlerFunc(ct.CaseTypeHandler))).Methods("GET")

	apiCreate.Handle("/scheduler/reminders", http.HandlerFunc(rem.TriggerHandler)).Methods("POST")
	apiCreate.Handle("/scheduler/reminders/test", api.RequireRole(models.RoleDirector, models.RoleAdmin)(http.HandlerFunc(rem.TestTriggerHandler))).Methods("POST")
	apiCreate.Handle("/reminders/case/{case_id}", api.Middleware(http.HandlerFunc(rem.RemindersByCaseIDHandler))).Methods("GET")

	apiCreate.Handle("/dashboard/summary", api.Middleware(http.HandlerFunc(dash.SummaryHandler))).Methods("GET")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")
	apiCreate.Handle("/evidence/{public_id}", api.RequireRole(models.RoleChief, models.RoleDirector, models.RoleAdmin)(http.HandlerFunc(cloudinaryHandler.DestroyEvidencePhoto))).Methods("DELETE")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("docket-api has connected to the database")

	// initialize api router and the daily reminder scheduler
	a.initializeRoutes()
	a.Scheduler.Start()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

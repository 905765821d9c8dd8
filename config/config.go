package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/logging"
	"github.com/rightsdesk/docket-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	// SchedulerSecret protects the external cron trigger endpoint
	SchedulerSecret string
	// SchedulerSpec is the cron schedule for the daily reminder job
	SchedulerSpec string
	// RunBudget bounds a single reminder run; an overrun fails the whole run
	RunBudget time.Duration

	// Reminder policy. The offsets are days since receipt at which pre-deadline
	// reminders fire; overdue reminders recur every OverdueCadenceDays.
	ReminderOffsets    []int
	OverdueCadenceDays int
	UrgentWindowDays   int
	DedupeReminders    bool

	// InvestigationCaseType names the case type the daily scan targets
	InvestigationCaseType string
	CaseNumberPrefix      string

	FromEmail string
	FromName  string

	RequestTimeout time.Duration
}

// New sets up the global logger and reads the config from the environment,
// with a .env file and viper defaults underneath (environment wins)
func New() *Config {

	//setup zap logger and replace default logger
	logger := logging.New()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	// load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("SCHEDULER_SPEC", "0 1 * * *")
	v.SetDefault("SCHEDULER_RUN_BUDGET", "10m")
	v.SetDefault("REMINDER_TRIGGER_DAYS", "45,50,55,58,60")
	v.SetDefault("OVERDUE_CADENCE_DAYS", 30)
	v.SetDefault("URGENT_WINDOW_DAYS", 5)
	v.SetDefault("REMINDER_DEDUPE", true)
	v.SetDefault("INVESTIGATION_CASE_TYPE", "Legal Investigation")
	v.SetDefault("CASE_NUMBER_PREFIX", "HRC")
	v.SetDefault("FROM_EMAIL", "no-reply@rightsdesk.org")
	v.SetDefault("FROM_NAME", "RightsDesk Docket")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.AutomaticEnv()

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),

		SchedulerSecret: os.Getenv("SCHEDULER_SECRET"),
		SchedulerSpec:   v.GetString("SCHEDULER_SPEC"),
		RunBudget:       v.GetDuration("SCHEDULER_RUN_BUDGET"),

		ReminderOffsets:    ParseTriggerDays(v.GetString("REMINDER_TRIGGER_DAYS")),
		OverdueCadenceDays: v.GetInt("OVERDUE_CADENCE_DAYS"),
		UrgentWindowDays:   v.GetInt("URGENT_WINDOW_DAYS"),
		DedupeReminders:    v.GetBool("REMINDER_DEDUPE"),

		InvestigationCaseType: v.GetString("INVESTIGATION_CASE_TYPE"),
		CaseNumberPrefix:      v.GetString("CASE_NUMBER_PREFIX"),

		FromEmail: v.GetString("FROM_EMAIL"),
		FromName:  v.GetString("FROM_NAME"),

		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
	}
}

// ParseTriggerDays parses a comma separated list of day offsets, dropping
// anything that is not a positive integer
func ParseTriggerDays(s string) []int {
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			continue
		}
		days = append(days, n)
	}
	return days
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}

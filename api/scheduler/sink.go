package scheduler

import (
	"context"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
	templates "github.com/rightsdesk/docket-api/templates/html"
)

// Broadcaster pushes a reminder to a connected staff member's live feed
type Broadcaster func(userID string, payload interface{})

type reminderSink struct {
	reminders databases.ReminderDatabase
	users     databases.UserDatabase
	fromEmail string
	fromName  string
	broadcast Broadcaster
}

// NewReminderSink builds the production sink: the reminders collection is the
// system of record, email and the websocket feed are best-effort delivery on top.
func NewReminderSink(rdb databases.ReminderDatabase, udb databases.UserDatabase, fromEmail, fromName string, broadcast Broadcaster) ReminderSink {
	return &reminderSink{
		reminders: rdb,
		users:     udb,
		fromEmail: fromEmail,
		fromName:  fromName,
		broadcast: broadcast,
	}
}

func (s *reminderSink) Emit(ctx context.Context, details models.ReminderDetails) error {
	details.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	doc := models.Reminder{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := s.reminders.InsertOne(ctx, doc); err != nil {
		return err
	}

	// delivery beyond the record is best effort; a bounced email must not
	// turn a recorded reminder into a failed emission
	s.deliverEmails(ctx, details)
	if s.broadcast != nil {
		for _, userID := range details.Recipients {
			s.broadcast(userID, doc)
		}
	}
	return nil
}

func (s *reminderSink) deliverEmails(ctx context.Context, details models.ReminderDetails) {
	if len(details.Recipients) == 0 {
		return
	}

	users, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": details.Recipients}})
	if err != nil {
		zap.S().Errorw("failed to resolve reminder recipients",
			"caseNumber", details.CaseNumber,
			"error", err,
		)
		return
	}

	var subject, htmlContent, plainText string
	deadline := details.Deadline.Time()
	switch details.Kind {
	case models.ReminderOverdue:
		subject = "Overdue Docket: " + details.CaseNumber
		htmlContent = templates.RenderOverdueReminderEmail(details.CaseNumber, details.TriggerDay, deadline)
		plainText = "Docket " + details.CaseNumber + " is past its deadline. Please review it as soon as possible."
	default:
		subject = "Docket Deadline Approaching: " + details.CaseNumber
		htmlContent = templates.RenderPreDeadlineReminderEmail(details.CaseNumber, details.TriggerDay, deadline)
		plainText = "Docket " + details.CaseNumber + " is approaching its deadline. Please review its progress."
	}

	for _, user := range users {
		if user.Details.Email == "" {
			continue
		}
		if err := s.sendEmail(user.Details.Email, user.Details.Name, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send reminder email",
				"caseNumber", details.CaseNumber,
				"userId", user.ID,
				"error", err,
			)
		}
	}
}

func (s *reminderSink) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

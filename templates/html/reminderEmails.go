package templates

import (
	"fmt"
	"time"
)

// RenderPreDeadlineReminderEmail generates HTML for the reminder sent while a
// docket is still inside its deadline, at a configured day offset from receipt.
func RenderPreDeadlineReminderEmail(caseNumber string, daysSinceReceived int, deadline time.Time) string {
	body := fmt.Sprintf(
		"Docket %s has been open for %d days and is approaching its resolution deadline.\n\n"+
			"Deadline: %s\n\n"+
			"Please review the docket's progress and update its status if the investigation has moved forward.",
		caseNumber, daysSinceReceived, deadline.Format("January 2, 2006"),
	)
	return RenderGenericEmail("Docket Deadline Approaching", body)
}

// RenderOverdueReminderEmail generates HTML for the recurring reminder sent
// after a docket's deadline has passed.
func RenderOverdueReminderEmail(caseNumber string, daysOverdue int, deadline time.Time) string {
	body := fmt.Sprintf(
		"Docket %s is now %d days past its resolution deadline.\n\n"+
			"Deadline was: %s\n\n"+
			"This reminder repeats until the docket is resolved. "+
			"Please prioritize this case or escalate it to your chief.",
		caseNumber, daysOverdue, deadline.Format("January 2, 2006"),
	)
	return RenderGenericEmail("Overdue Docket Requires Action", body)
}

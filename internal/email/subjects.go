package email

const (
	subjectLeadCapturedFmt     = "New lead: %s"
	subjectDealWonFmt          = "Deal won: %s"
	subjectFollowUpReminderFmt = "Follow up needed: %s"
)

package tool

import (
	"time"

	"mail-assistant-go/internal/model"
)

// EmailSummary is the tool-facing view of a stored email.
type EmailSummary struct {
	ID        uint   `json:"id" jsonschema:"email ID"`
	Sender    string `json:"sender" jsonschema:"sender address"`
	Recipient string `json:"recipient" jsonschema:"recipient address"`
	Subject   string `json:"subject" jsonschema:"email subject"`
	Body      string `json:"body" jsonschema:"email body"`
	Timestamp string `json:"timestamp" jsonschema:"creation time in RFC 3339"`
	Read      bool   `json:"read" jsonschema:"whether the email has been read"`
}

// EmailList wraps the result of the list style tools.
type EmailList struct {
	Emails       []EmailSummary `json:"emails" jsonschema:"matching emails, newest first"`
	TotalResults int            `json:"total_results" jsonschema:"number of emails returned"`
}

func toSummary(e *model.Email) EmailSummary {
	return EmailSummary{
		ID:        e.ID,
		Sender:    e.Sender,
		Recipient: e.Recipient,
		Subject:   e.Subject,
		Body:      e.Body,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Read:      e.Read,
	}
}

func toList(emails []model.Email) EmailList {
	out := make([]EmailSummary, 0, len(emails))
	for i := range emails {
		out = append(out, toSummary(&emails[i]))
	}
	return EmailList{Emails: out, TotalResults: len(out)}
}

package service

import (
	"math/rand/v2"
	"time"

	"mail-assistant-go/internal/model"
)

type seedEmail struct {
	sender, recipient, subject, body string
}

var seedEmails = []seedEmail{
	{"boss@email.com", "you@email.com", "Quarterly Report", "Please finalize the report ASAP."},
	{"alice@work.com", "you@email.com", "Lunch?", "Free for lunch today?"},
	{"bob@work.com", "you@email.com", "Code Review", "I left some comments on your PR."},
	{"charlie@work.com", "you@email.com", "Meeting", "Can we reschedule?"},
	{"eric@work.com", "you@email.com", "Happy Hour", "We're planning drinks this Friday!"},
	{model.OwnerSender, "boss@email.com", "Days off", "Can I get some days off the coming week?"},
}

// SeedEmails returns the fixed sample set stamped with now, in random order.
func SeedEmails(now time.Time) []model.Email {
	emails := make([]model.Email, 0, len(seedEmails))
	for _, s := range seedEmails {
		emails = append(emails, model.Email{
			Sender:    s.sender,
			Recipient: s.recipient,
			Subject:   s.subject,
			Body:      s.body,
			Timestamp: now.UTC(),
			Read:      false,
		})
	}

	rand.Shuffle(len(emails), func(i, j int) {
		emails[i], emails[j] = emails[j], emails[i]
	})

	return emails
}

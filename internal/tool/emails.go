package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mail-assistant-go/internal/emailclient"
)

type ListRequest struct{}

type SearchEmailsRequest struct {
	Query string `json:"query" jsonschema:"keyword matched against subject, body and sender"`
}

type FilterEmailsRequest struct {
	Recipient string `json:"recipient,omitempty" jsonschema:"exact recipient address"`
	DateFrom  string `json:"date_from,omitempty" jsonschema:"inclusive lower bound, YYYY-MM-DD"`
	DateTo    string `json:"date_to,omitempty" jsonschema:"inclusive upper bound at midnight, YYYY-MM-DD"`
}

type EmailIDRequest struct {
	EmailID uint `json:"email_id" jsonschema:"the email ID"`
}

type SendEmailRequest struct {
	Recipient string `json:"recipient" jsonschema:"recipient address"`
	Subject   string `json:"subject" jsonschema:"email subject"`
	Body      string `json:"body" jsonschema:"email body"`
}

type SearchUnreadFromSenderRequest struct {
	Sender string `json:"sender" jsonschema:"sender address or part of it"`
}

type DeleteEmailResponse struct {
	Message string `json:"message" jsonschema:"confirmation message"`
}

// Emails implements the email tools on top of the email service API.
type Emails struct {
	svc emailSvc
}

func (t *Emails) ListAllEmails(ctx context.Context, _ *mcp.CallToolRequest, _ ListRequest) (*mcp.CallToolResult, EmailList, error) {
	emails, err := t.svc.ListAll(ctx)
	if err != nil {
		return nil, EmailList{}, fmt.Errorf("svc.ListAll failed: %w", err)
	}
	return nil, toList(emails), nil
}

func (t *Emails) ListUnreadEmails(ctx context.Context, _ *mcp.CallToolRequest, _ ListRequest) (*mcp.CallToolResult, EmailList, error) {
	emails, err := t.svc.ListUnread(ctx)
	if err != nil {
		return nil, EmailList{}, fmt.Errorf("svc.ListUnread failed: %w", err)
	}
	return nil, toList(emails), nil
}

func (t *Emails) SearchEmails(ctx context.Context, _ *mcp.CallToolRequest, input SearchEmailsRequest) (*mcp.CallToolResult, EmailList, error) {
	emails, err := t.svc.Search(ctx, input.Query)
	if err != nil {
		return nil, EmailList{}, fmt.Errorf("svc.Search failed: %w", err)
	}
	return nil, toList(emails), nil
}

func (t *Emails) FilterEmails(ctx context.Context, _ *mcp.CallToolRequest, input FilterEmailsRequest) (*mcp.CallToolResult, EmailList, error) {
	emails, err := t.svc.Filter(ctx, emailclient.FilterParams{
		Recipient: input.Recipient,
		DateFrom:  input.DateFrom,
		DateTo:    input.DateTo,
	})
	if err != nil {
		return nil, EmailList{}, fmt.Errorf("svc.Filter failed: %w", err)
	}
	return nil, toList(emails), nil
}

func (t *Emails) GetEmail(ctx context.Context, _ *mcp.CallToolRequest, input EmailIDRequest) (*mcp.CallToolResult, EmailSummary, error) {
	email, err := t.svc.Get(ctx, input.EmailID)
	if err != nil {
		return nil, EmailSummary{}, fmt.Errorf("get email %d failed: %w", input.EmailID, err)
	}
	return nil, toSummary(email), nil
}

func (t *Emails) MarkEmailAsRead(ctx context.Context, _ *mcp.CallToolRequest, input EmailIDRequest) (*mcp.CallToolResult, EmailSummary, error) {
	email, err := t.svc.MarkRead(ctx, input.EmailID)
	if err != nil {
		return nil, EmailSummary{}, fmt.Errorf("mark email %d as read failed: %w", input.EmailID, err)
	}
	return nil, toSummary(email), nil
}

func (t *Emails) MarkEmailAsUnread(ctx context.Context, _ *mcp.CallToolRequest, input EmailIDRequest) (*mcp.CallToolResult, EmailSummary, error) {
	email, err := t.svc.MarkUnread(ctx, input.EmailID)
	if err != nil {
		return nil, EmailSummary{}, fmt.Errorf("mark email %d as unread failed: %w", input.EmailID, err)
	}
	return nil, toSummary(email), nil
}

func (t *Emails) SendEmail(ctx context.Context, _ *mcp.CallToolRequest, input SendEmailRequest) (*mcp.CallToolResult, EmailSummary, error) {
	email, err := t.svc.Send(ctx, input.Recipient, input.Subject, input.Body)
	if err != nil {
		return nil, EmailSummary{}, fmt.Errorf("svc.Send failed: %w", err)
	}
	return nil, toSummary(email), nil
}

func (t *Emails) DeleteEmail(ctx context.Context, _ *mcp.CallToolRequest, input EmailIDRequest) (*mcp.CallToolResult, DeleteEmailResponse, error) {
	msg, err := t.svc.Delete(ctx, input.EmailID)
	if err != nil {
		return nil, DeleteEmailResponse{}, fmt.Errorf("delete email %d failed: %w", input.EmailID, err)
	}
	return nil, DeleteEmailResponse{Message: msg}, nil
}

// SearchUnreadFromSender runs a keyword search on the sender and keeps the unread matches.
func (t *Emails) SearchUnreadFromSender(ctx context.Context, _ *mcp.CallToolRequest, input SearchUnreadFromSenderRequest) (*mcp.CallToolResult, EmailList, error) {
	emails, err := t.svc.Search(ctx, input.Sender)
	if err != nil {
		return nil, EmailList{}, fmt.Errorf("svc.Search failed: %w", err)
	}

	needle := strings.ToLower(input.Sender)
	unread := emails[:0]
	for _, e := range emails {
		if !e.Read && strings.Contains(strings.ToLower(e.Sender), needle) {
			unread = append(unread, e)
		}
	}
	return nil, toList(unread), nil
}

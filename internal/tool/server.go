// Package tool exposes the email operations as an MCP tool set.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mail-assistant-go/internal/emailclient"
	"mail-assistant-go/internal/model"
)

type emailSvc interface {
	ListAll(ctx context.Context) ([]model.Email, error)
	ListUnread(ctx context.Context) ([]model.Email, error)
	Search(ctx context.Context, query string) ([]model.Email, error)
	Filter(ctx context.Context, params emailclient.FilterParams) ([]model.Email, error)
	Get(ctx context.Context, id uint) (*model.Email, error)
	MarkRead(ctx context.Context, id uint) (*model.Email, error)
	MarkUnread(ctx context.Context, id uint) (*model.Email, error)
	Send(ctx context.Context, recipient, subject, body string) (*model.Email, error)
	Delete(ctx context.Context, id uint) (string, error)
}

// NewServer creates an MCP server with the email tools.
func NewServer(svc emailSvc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "email-assistant", Version: "v1.0.0"}, nil)
	t := &Emails{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_all_emails",
		Description: "List every email in the mailbox, newest first",
	}, t.ListAllEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_unread_emails",
		Description: "List emails that have not been read yet, newest first",
	}, t.ListUnreadEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_emails",
		Description: "Search emails whose subject, body or sender contains the query, ignoring case",
	}, t.SearchEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "filter_emails",
		Description: "Filter emails by recipient and by an inclusive date range (YYYY-MM-DD)",
	}, t.FilterEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_email",
		Description: "Get a single email by its ID",
	}, t.GetEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_email_as_read",
		Description: "Mark an email as read",
	}, t.MarkEmailAsRead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_email_as_unread",
		Description: "Mark an email as unread",
	}, t.MarkEmailAsUnread)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_email",
		Description: "Send an email from the mailbox owner",
	}, t.SendEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_email",
		Description: "Delete an email permanently",
	}, t.DeleteEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_unread_from_sender",
		Description: "List unread emails whose sender matches the given address",
	}, t.SearchUnreadFromSender)

	return server
}

package tool_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail-assistant-go/internal/config"
	"mail-assistant-go/internal/db/dbtest"
	"mail-assistant-go/internal/emailclient"
	"mail-assistant-go/internal/handler"
	"mail-assistant-go/internal/metrics"
	"mail-assistant-go/internal/repository"
	"mail-assistant-go/internal/router"
	"mail-assistant-go/internal/service"
	"mail-assistant-go/internal/tool"
)

func newEmailClient(t *testing.T) *emailclient.Client {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := service.NewEmailService(repository.New(dbtest.New(t)), m)
	require.NoError(t, svc.ResetToSeed(context.Background(), service.TriggerStartup))

	srv := httptest.NewServer(router.SetupEmailRouter(handler.NewHandlers(svc, config.UIConfig{}, reg), m))
	t.Cleanup(srv.Close)

	return emailclient.New(srv.URL, 5*time.Second)
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession
}

func call[T any](t *testing.T, session *mcp.ClientSession, name string, args any) T {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text := result.Content[0].(*mcp.TextContent).Text
	require.False(t, result.IsError, text)

	var out T
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func callErr(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.True(t, result.IsError, "Result should indicate error")
	require.NotEmpty(t, result.Content)

	return result.Content[0].(*mcp.TextContent).Text
}

func TestListTools(t *testing.T) {
	session := connect(t, tool.NewServer(newEmailClient(t)))

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tl := range res.Tools {
		names = append(names, tl.Name)
		assert.NotEmpty(t, tl.Description, tl.Name)
		assert.NotNil(t, tl.InputSchema, tl.Name)
	}

	assert.ElementsMatch(t, []string{
		"list_all_emails",
		"list_unread_emails",
		"search_emails",
		"filter_emails",
		"get_email",
		"mark_email_as_read",
		"mark_email_as_unread",
		"send_email",
		"delete_email",
		"search_unread_from_sender",
	}, names)
}

func TestListAndSearchTools(t *testing.T) {
	session := connect(t, tool.NewServer(newEmailClient(t)))

	all := call[tool.EmailList](t, session, "list_all_emails", map[string]any{})
	assert.Equal(t, 6, all.TotalResults)
	assert.Len(t, all.Emails, 6)

	unread := call[tool.EmailList](t, session, "list_unread_emails", map[string]any{})
	assert.Equal(t, 6, unread.TotalResults)

	found := call[tool.EmailList](t, session, "search_emails", tool.SearchEmailsRequest{Query: "LUNCH"})
	require.Len(t, found.Emails, 1)
	assert.Equal(t, "alice@work.com", found.Emails[0].Sender)

	none := call[tool.EmailList](t, session, "search_emails", tool.SearchEmailsRequest{Query: "no such thing"})
	assert.Empty(t, none.Emails)
	assert.Zero(t, none.TotalResults)
}

func TestFilterTool(t *testing.T) {
	session := connect(t, tool.NewServer(newEmailClient(t)))

	toBoss := call[tool.EmailList](t, session, "filter_emails", tool.FilterEmailsRequest{Recipient: "boss@email.com"})
	require.Len(t, toBoss.Emails, 1)
	assert.Equal(t, "Days off", toBoss.Emails[0].Subject)

	future := call[tool.EmailList](t, session, "filter_emails", tool.FilterEmailsRequest{DateFrom: "2099-01-01"})
	assert.Empty(t, future.Emails)

	text := callErr(t, session, "filter_emails", tool.FilterEmailsRequest{DateFrom: "01/01/2024"})
	assert.Contains(t, text, "Invalid date_from format. Use YYYY-MM-DD")
}

func TestEmailLifecycleTools(t *testing.T) {
	session := connect(t, tool.NewServer(newEmailClient(t)))

	sent := call[tool.EmailSummary](t, session, "send_email", tool.SendEmailRequest{
		Recipient: "bob@work.com",
		Subject:   "Re: Code Review",
		Body:      "Thanks, addressed all comments.",
	})
	assert.NotZero(t, sent.ID)
	assert.False(t, sent.Read)
	_, err := time.Parse(time.RFC3339, sent.Timestamp)
	assert.NoError(t, err)

	all := call[tool.EmailList](t, session, "list_all_emails", map[string]any{})
	require.NotEmpty(t, all.Emails)
	assert.Equal(t, sent.ID, all.Emails[0].ID)

	got := call[tool.EmailSummary](t, session, "get_email", tool.EmailIDRequest{EmailID: sent.ID})
	assert.Equal(t, sent, got)

	read := call[tool.EmailSummary](t, session, "mark_email_as_read", tool.EmailIDRequest{EmailID: sent.ID})
	assert.True(t, read.Read)

	unread := call[tool.EmailSummary](t, session, "mark_email_as_unread", tool.EmailIDRequest{EmailID: sent.ID})
	assert.False(t, unread.Read)

	deleted := call[tool.DeleteEmailResponse](t, session, "delete_email", tool.EmailIDRequest{EmailID: sent.ID})
	assert.Equal(t, "Email deleted", deleted.Message)

	text := callErr(t, session, "get_email", tool.EmailIDRequest{EmailID: sent.ID})
	assert.Contains(t, text, "Email not found")

	text = callErr(t, session, "delete_email", tool.EmailIDRequest{EmailID: sent.ID})
	assert.Contains(t, text, "Email not found")
}

func TestSearchUnreadFromSender(t *testing.T) {
	session := connect(t, tool.NewServer(newEmailClient(t)))

	fromBoss := call[tool.EmailList](t, session, "search_unread_from_sender", tool.SearchUnreadFromSenderRequest{Sender: "boss@email.com"})
	require.Len(t, fromBoss.Emails, 1)
	assert.Equal(t, "Quarterly Report", fromBoss.Emails[0].Subject)

	call[tool.EmailSummary](t, session, "mark_email_as_read", tool.EmailIDRequest{EmailID: fromBoss.Emails[0].ID})

	fromBoss = call[tool.EmailList](t, session, "search_unread_from_sender", tool.SearchUnreadFromSenderRequest{Sender: "boss@email.com"})
	assert.Empty(t, fromBoss.Emails)
}

func TestServiceUnavailable(t *testing.T) {
	session := connect(t, tool.NewServer(emailclient.New("http://127.0.0.1:1", time.Second)))

	text := callErr(t, session, "list_all_emails", map[string]any{})
	assert.Contains(t, text, "svc.ListAll failed")

	text = callErr(t, session, "get_email", tool.EmailIDRequest{EmailID: 1})
	assert.Contains(t, text, fmt.Sprintf("get email %d failed", 1))
}

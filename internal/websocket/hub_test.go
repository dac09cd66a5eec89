package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHubTest(t *testing.T) (*Hub, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	hub := NewHub(m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, m
}

func session(userID, companyID string, role model.UserRole) *model.Session {
	return &model.Session{
		User:    model.User{ID: userID, CompanyID: companyID, Role: role},
		Company: model.Company{ID: companyID},
	}
}

func registerAll(t *testing.T, hub *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		hub.Register(c)
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == len(clients) }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) model.RequestEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var event model.RequestEvent
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.UserID)
	}
	return model.RequestEvent{}
}

func TestHub_PublishRoutesByCompany(t *testing.T) {
	hub, m := setupHubTest(t)

	employer := NewClient(hub, nil, session("user-1", "company-1", model.RoleEmployer))
	otherEmployer := NewClient(hub, nil, session("user-company-2", "company-2", model.RoleEmployer))
	verifier := NewClient(hub, nil, session("user-2", "company-1", model.RoleVerifier))
	registerAll(t, hub, employer, otherEmployer, verifier)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LiveClients))

	hub.Publish(model.RequestEvent{
		Type:      model.EventRequestPayment,
		RequestID: "REQ-1",
		CompanyID: "company-1",
		Status:    model.RequestStatusInProgress,
		Action:    "Payment successful - ₹500",
	})

	for _, c := range []*Client{employer, verifier} {
		event := receive(t, c)
		assert.Equal(t, model.EventRequestPayment, event.Type)
		assert.Equal(t, "REQ-1", event.RequestID)
		assert.Equal(t, model.RequestStatusInProgress, event.Status)
	}

	hub.Publish(model.RequestEvent{Type: model.EventRequestCreated, RequestID: "REQ-2", CompanyID: "company-2"})
	assert.Equal(t, "REQ-2", receive(t, otherEmployer).RequestID)
	assert.Equal(t, "REQ-2", receive(t, verifier).RequestID)
	assert.Empty(t, employer.Send)
}

func TestHub_Unregister(t *testing.T) {
	hub, m := setupHubTest(t)

	client := NewClient(hub, nil, session("user-1", "company-1", model.RoleEmployer))
	registerAll(t, hub, client)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LiveClients))

	_, open := <-client.Send
	assert.False(t, open)

	// a second unregister is harmless
	hub.Unregister(client)
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub, _ := setupHubTest(t)

	client := NewClient(hub, nil, session("user-2", "company-1", model.RoleVerifier))
	registerAll(t, hub, client)

	for i := 0; i < sendBufferSize+1; i++ {
		hub.Publish(model.RequestEvent{Type: model.EventRequestUpdated, RequestID: "REQ-1", CompanyID: "company-1"})
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_HandleClientMessage(t *testing.T) {
	hub, _ := setupHubTest(t)

	client := NewClient(hub, nil, session("user-1", "company-1", model.RoleEmployer))
	registerAll(t, hub, client)

	hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	assert.Equal(t, `{"type":"pong"}`, string(<-client.Send))

	hub.HandleClientMessage(client, []byte(`not json`))
	assert.Empty(t, client.Send)

	// only the first maxMessagesPerSecond messages of a burst are answered
	for i := 0; i < maxMessagesPerSecond+5; i++ {
		hub.HandleClientMessage(client, []byte(`{"type":"ping"}`))
	}
	assert.LessOrEqual(t, len(client.Send), maxMessagesPerSecond)
}

func TestHub_RunStopsWithContext(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub, nil, session("user-1", "company-1", model.RoleEmployer))
	registerAll(t, hub, client)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_RegisterAndUnregisterAfterStop(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 2*cap(hub.unregister); i++ {
			hub.Unregister(NewClient(hub, nil, session("user-1", "company-1", model.RoleEmployer)))
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after the hub stopped")
	}

	late := NewClient(hub, nil, session("user-2", "company-1", model.RoleEmployer))
	hub.Register(late)
	_, open := <-late.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"

	"github.com/warodomh/marketplace/internal/events"
)

func newPublishContext(t *testing.T) (echo.Context, *bytes.Buffer) {
	t.Helper()
	e := echo.New()
	var buf bytes.Buffer
	e.Logger.SetOutput(&buf)
	e.Logger.SetLevel(log.WARN)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	return e.NewContext(req, httptest.NewRecorder()), &buf
}

func TestPublishLogsFailures(t *testing.T) {
	c, buf := newPublishContext(t)

	// A channel cannot be marshalled, so PublishEvent fails before any
	// broker traffic.
	publish(c, &events.Producer{}, events.TopicOrderEvents, "order", map[string]any{
		"bad": make(chan int),
	})

	require.Contains(t, buf.String(), "publish to order_events")
}

func TestPublishWithoutBrokerIsSilent(t *testing.T) {
	c, buf := newPublishContext(t)

	publish(c, &events.Producer{}, events.TopicOrderEvents, "order", map[string]any{
		"type": "order_placed",
	})
	publish(c, nil, events.TopicOrderEvents, "order", map[string]any{
		"type": "order_placed",
	})

	require.Empty(t, buf.String())
}

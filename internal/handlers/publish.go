package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/warodomh/marketplace/internal/events"
)

// publish sends an event best effort: failures are logged, never
// surfaced to the client.
func publish(c echo.Context, p *events.Producer, topic, key string, event map[string]any) {
	if err := p.PublishEvent(c.Request().Context(), topic, key, event); err != nil {
		c.Logger().Warnf("publish to %s: %v", topic, err)
	}
}

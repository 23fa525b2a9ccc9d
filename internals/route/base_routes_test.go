package routes

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsDatabaseDown(t *testing.T) {
	//** Arrange
	app := fiber.New()
	BaseRoutes(app, nil)

	//** Act
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "DOWN", body["status"])
	assert.NotEmpty(t, body["server_time"])
}

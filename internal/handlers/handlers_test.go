package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/config"
	"github.com/example/trekbot/internal/database"
	"github.com/example/trekbot/internal/handlers"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/routes"
)

// envelope mirrors the response shape of every endpoint.
type envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Errors  map[string]string      `json:"errors"`
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Connect(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cfg := &config.Config{
		AppPort:         "0",
		DatabaseURL:     dbPath,
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app, db, cfg)

	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response for %s %s: %v", method, path, err)
	}

	return resp.StatusCode, env
}

// registerUser creates an account through the API.
func registerUser(t *testing.T, app *fiber.App, username, role string) {
	t.Helper()

	status, env := doRequest(t, app, http.MethodPost, "/api/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	if status != http.StatusCreated {
		t.Fatalf("Failed to register %s: status %d, message %q", username, status, env.Message)
	}
}

// loginUser returns the access and refresh tokens for an account.
func loginUser(t *testing.T, app *fiber.App, username string) (string, string) {
	t.Helper()

	status, env := doRequest(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": username,
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("Failed to log in %s: status %d, message %q", username, status, env.Message)
	}

	access, _ := env.Data["access"].(string)
	refresh, _ := env.Data["refresh"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("Login response missing tokens: %+v", env.Data)
	}

	return access, refresh
}

// vendorRecord fetches the auto-provisioned Vendor row for a vendor user.
func vendorRecord(t *testing.T, db *gorm.DB, username string) models.Vendor {
	t.Helper()

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("User %s not found: %v", username, err)
	}

	var vendor models.Vendor
	if err := db.Where("owner_id = ?", user.ID).First(&vendor).Error; err != nil {
		t.Fatalf("Vendor for %s not found: %v", username, err)
	}

	return vendor
}

// createReward inserts a reward through the API and returns its ID.
func createReward(t *testing.T, app *fiber.App, token, name string, maxPerDay int) string {
	t.Helper()

	status, env := doRequest(t, app, http.MethodPost, "/api/rewards", token, fiber.Map{
		"name":                    name,
		"description":             "test reward",
		"visits_required":         1,
		"max_redemptions_per_day": maxPerDay,
		"valid_until":             time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	if status != http.StatusCreated {
		t.Fatalf("Failed to create reward: status %d, message %q, errors %v", status, env.Message, env.Errors)
	}

	id, _ := env.Data["id"].(string)
	if id == "" {
		t.Fatalf("Reward response missing id: %+v", env.Data)
	}

	return id
}

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/trekbot/internal/models"
)

func TestCheckInAndClose(t *testing.T) {
	app, db := setupTestApp(t)

	registerUser(t, app, "summit-lodge", models.RoleVendor)
	registerUser(t, app, "hiker", models.RoleTraveler)

	vendor := vendorRecord(t, db, "summit-lodge")
	access, _ := loginUser(t, app, "hiker")

	status, env := doRequest(t, app, http.MethodPost, "/api/checkins", access, fiber.Map{
		"vendor_id": vendor.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201 checking in, got %d: %q", status, env.Message)
	}
	if env.Data["entry_time"] == nil {
		t.Fatal("Expected server-stamped entry_time")
	}
	if env.Data["exit_time"] != nil {
		t.Fatalf("Expected null exit_time on creation, got %v", env.Data["exit_time"])
	}
	checkInID, _ := env.Data["id"].(string)

	status, env = doRequest(t, app, http.MethodPut, "/api/checkins/"+checkInID, access, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 closing check-in, got %d: %q", status, env.Message)
	}
	if env.Data["exit_time"] == nil {
		t.Fatal("Expected exit_time after close")
	}

	// Exit time transitions from null at most once.
	status, env = doRequest(t, app, http.MethodPut, "/api/checkins/"+checkInID, access, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("Expected 400 on second close, got %d", status)
	}
	if env.Message != "exit already logged" {
		t.Errorf("Unexpected message: %q", env.Message)
	}
}

func TestCheckInUnknownVendor(t *testing.T) {
	app, _ := setupTestApp(t)

	registerUser(t, app, "lost-hiker", models.RoleTraveler)
	access, _ := loginUser(t, app, "lost-hiker")

	status, _ := doRequest(t, app, http.MethodPost, "/api/checkins", access, fiber.Map{
		"vendor_id": "b4a3a1ce-0000-4000-8000-000000000000",
	})
	if status != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown vendor, got %d", status)
	}
}

func TestCheckInListScoping(t *testing.T) {
	app, db := setupTestApp(t)

	registerUser(t, app, "tea-house", models.RoleVendor)
	registerUser(t, app, "traveler-one", models.RoleTraveler)
	registerUser(t, app, "traveler-two", models.RoleTraveler)

	vendor := vendorRecord(t, db, "tea-house")
	accessOne, _ := loginUser(t, app, "traveler-one")
	accessTwo, _ := loginUser(t, app, "traveler-two")
	accessVendor, _ := loginUser(t, app, "tea-house")

	for _, token := range []string{accessOne, accessTwo} {
		status, env := doRequest(t, app, http.MethodPost, "/api/checkins", token, fiber.Map{
			"vendor_id": vendor.ID,
		})
		if status != http.StatusCreated {
			t.Fatalf("Check-in failed: %d %q", status, env.Message)
		}
	}

	// Travelers only ever see their own rows.
	status, env := doRequest(t, app, http.MethodGet, "/api/checkins", accessOne, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 listing check-ins, got %d", status)
	}
	items, _ := env.Data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected traveler to see 1 check-in, got %d", len(items))
	}

	// The vendor sees everything at its location.
	status, env = doRequest(t, app, http.MethodGet, "/api/checkins", accessVendor, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 listing vendor check-ins, got %d", status)
	}
	items, _ = env.Data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected vendor to see 2 check-ins, got %d", len(items))
	}

	// A foreign check-in is out of scope, not forbidden.
	var other models.CheckIn
	var one models.User
	if err := db.Where("username = ?", "traveler-one").First(&one).Error; err != nil {
		t.Fatalf("User not found: %v", err)
	}
	if err := db.Where("user_id <> ?", one.ID).First(&other).Error; err != nil {
		t.Fatalf("Check-in not found: %v", err)
	}
	status, _ = doRequest(t, app, http.MethodGet, "/api/checkins/"+other.ID.String(), accessOne, nil)
	if status != http.StatusNotFound {
		t.Fatalf("Expected 404 for foreign check-in, got %d", status)
	}
}

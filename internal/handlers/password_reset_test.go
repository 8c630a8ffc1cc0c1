package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/trekbot/internal/models"
)

func TestPasswordResetFlow(t *testing.T) {
	app, db := setupTestApp(t)

	registerUser(t, app, "forgetful", models.RoleTraveler)

	status, env := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
		"email": "forgetful@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200 requesting reset, got %d: %q", status, env.Message)
	}

	var user models.User
	if err := db.Where("username = ?", "forgetful").First(&user).Error; err != nil {
		t.Fatalf("User not found: %v", err)
	}

	var otp models.PasswordResetOTP
	if err := db.Where("user_id = ?", user.ID).First(&otp).Error; err != nil {
		t.Fatalf("OTP row not created: %v", err)
	}
	if len(otp.Code) != 6 {
		t.Fatalf("Expected 6-digit code, got %q", otp.Code)
	}

	status, env = doRequest(t, app, http.MethodPost, "/api/password-reset/confirm", "", fiber.Map{
		"email":        "forgetful@example.com",
		"otp":          otp.Code,
		"new_password": "fresh-password",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200 confirming reset, got %d: %q", status, env.Message)
	}

	// New password works, OTP is consumed.
	status, _ = doRequest(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": "forgetful",
		"password": "fresh-password",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200 logging in with new password, got %d", status)
	}

	status, _ = doRequest(t, app, http.MethodPost, "/api/password-reset/confirm", "", fiber.Map{
		"email":        "forgetful@example.com",
		"otp":          otp.Code,
		"new_password": "another-password",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("Expected 400 reusing consumed OTP, got %d", status)
	}
}

func TestPasswordResetWrongCode(t *testing.T) {
	app, _ := setupTestApp(t)

	registerUser(t, app, "guessable", models.RoleTraveler)

	status, env := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
		"email": "guessable@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %q", status, env.Message)
	}

	status, env = doRequest(t, app, http.MethodPost, "/api/password-reset/confirm", "", fiber.Map{
		"email":        "guessable@example.com",
		"otp":          "000000",
		"new_password": "new-password",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("Expected 400 for wrong code, got %d", status)
	}
	if env.Message != "invalid or expired OTP" {
		t.Errorf("Unexpected message: %q", env.Message)
	}
}

func TestPasswordResetExpiredCode(t *testing.T) {
	app, db := setupTestApp(t)

	registerUser(t, app, "latecomer", models.RoleTraveler)

	status, _ := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
		"email": "latecomer@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}

	var user models.User
	if err := db.Where("username = ?", "latecomer").First(&user).Error; err != nil {
		t.Fatalf("User not found: %v", err)
	}

	var otp models.PasswordResetOTP
	if err := db.Where("user_id = ?", user.ID).First(&otp).Error; err != nil {
		t.Fatalf("OTP row not created: %v", err)
	}

	// Age the code past its 10-minute window.
	if err := db.Model(&otp).Update("created_at", time.Now().Add(-11*time.Minute)).Error; err != nil {
		t.Fatalf("Failed to age OTP: %v", err)
	}

	status, env := doRequest(t, app, http.MethodPost, "/api/password-reset/confirm", "", fiber.Map{
		"email":        "latecomer@example.com",
		"otp":          otp.Code,
		"new_password": "new-password",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("Expected 400 for expired code, got %d: %q", status, env.Message)
	}
}

func TestPasswordResetReplacesPreviousCode(t *testing.T) {
	app, db := setupTestApp(t)

	registerUser(t, app, "impatient", models.RoleTraveler)

	for i := 0; i < 2; i++ {
		status, _ := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
			"email": "impatient@example.com",
		})
		if status != http.StatusOK {
			t.Fatalf("Expected 200 on request %d, got %d", i+1, status)
		}
	}

	var user models.User
	if err := db.Where("username = ?", "impatient").First(&user).Error; err != nil {
		t.Fatalf("User not found: %v", err)
	}

	var count int64
	if err := db.Model(&models.PasswordResetOTP{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count OTP rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single live OTP row, got %d", count)
	}
}

func TestPasswordResetUnknownEmailIsIndistinguishable(t *testing.T) {
	app, _ := setupTestApp(t)

	registerUser(t, app, "present", models.RoleTraveler)

	statusKnown, envKnown := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
		"email": "present@example.com",
	})
	statusUnknown, envUnknown := doRequest(t, app, http.MethodPost, "/api/password-reset", "", fiber.Map{
		"email": "ghost@example.com",
	})

	if statusKnown != statusUnknown || envKnown.Message != envUnknown.Message {
		t.Errorf("Responses differ between known and unknown email: %d %q vs %d %q",
			statusKnown, envKnown.Message, statusUnknown, envUnknown.Message)
	}
}

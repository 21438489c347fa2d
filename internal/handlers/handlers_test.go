package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/middleware"
	"privacy-guard/internal/models"
	"privacy-guard/internal/services/alerts"
	"privacy-guard/internal/services/installer"
	"privacy-guard/internal/testutil"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	adminToken string
	userToken  string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	c := qt.New(t)

	config.AppConfig = config.Default()
	db := testutil.NewTestDB(t)
	database.DB = db

	clock := func() time.Time { return fixedNow }
	h := &Handlers{
		DB:        db,
		Installer: installer.New(db, installer.WithClock(clock)),
		Alerts:    alerts.New(db, alerts.WithClock(clock)),
	}
	app := fiber.New()
	RegisterRoutes(app, h)

	admin := createUser(c, db, "dpo@acme.test", models.RoleAdmin)
	user := createUser(c, db, "analyst@acme.test", models.RoleUser)

	return &testEnv{
		app:        app,
		db:         db,
		adminToken: tokenFor(c, admin),
		userToken:  tokenFor(c, user),
	}
}

func createUser(c *qt.C, db *gorm.DB, email, role string) *models.User {
	u := &models.User{Email: email, FirstName: "Test", LastName: "User", Role: role}
	c.Assert(u.SetPassword("s3cret-pass"), qt.IsNil)
	c.Assert(db.Create(u).Error, qt.IsNil)
	return u
}

func tokenFor(c *qt.C, u *models.User) string {
	token, err := middleware.GenerateToken(u.ID, u.Email, u.Role)
	c.Assert(err, qt.IsNil)
	return token
}

func (e *testEnv) do(c *qt.C, method, path, token, body string) (int, []byte) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	return resp.StatusCode, data
}

func decode[T any](c *qt.C, data []byte) T {
	var v T
	c.Assert(json.Unmarshal(data, &v), qt.IsNil, qt.Commentf("%s", data))
	return v
}

func TestInstallStatusIsPublic(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, body := env.do(c, http.MethodGet, "/api/install/status", "", "")
	c.Assert(code, qt.Equals, fiber.StatusOK)

	status := decode[installer.Status](c, body)
	c.Assert(status.IsInstalled, qt.IsFalse)
	c.Assert(status.InstallationDate, qt.IsNil)
}

func TestInstallRequiresAdmin(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, _ := env.do(c, http.MethodPost, "/api/admin/install", "", "")
	c.Assert(code, qt.Equals, fiber.StatusUnauthorized)

	code, _ = env.do(c, http.MethodPost, "/api/admin/install", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusForbidden)
}

func TestInstallLifecycle(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, body := env.do(c, http.MethodPost, "/api/admin/install", env.adminToken, `{"include_sample_data":true}`)
	c.Assert(code, qt.Equals, fiber.StatusOK, qt.Commentf("%s", body))

	result := decode[installer.InstallResult](c, body)
	c.Assert(result.Success, qt.IsTrue)
	c.Assert(result.Details.IncludedSampleData, qt.IsTrue)
	c.Assert(result.Details.InstalledAt.Equal(fixedNow), qt.IsTrue)

	_, body = env.do(c, http.MethodGet, "/api/install/status", "", "")
	status := decode[installer.Status](c, body)
	c.Assert(status, qt.DeepEquals, installer.Status{
		IsInstalled:              true,
		HasReferenceData:         true,
		HasDefaultConfigurations: true,
		SampleDataExists:         true,
		InstallationDate:         status.InstallationDate,
	})
	c.Assert(status.InstallationDate, qt.IsNotNil)

	code, body = env.do(c, http.MethodDelete, "/api/admin/sample-data", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	removal := decode[installer.RemovalResult](c, body)
	c.Assert(removal.Success, qt.IsTrue)
	c.Assert(removal.RemovedCount, qt.Equals, int64(23))

	code, body = env.do(c, http.MethodPost, "/api/admin/reset", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[installer.ResetResult](c, body).Success, qt.IsTrue)

	_, body = env.do(c, http.MethodGet, "/api/install/status", "", "")
	c.Assert(decode[installer.Status](c, body), qt.DeepEquals, installer.Status{})

	var actions []string
	c.Assert(env.db.Model(&models.ActivityLog{}).Order("id").Pluck("action", &actions).Error, qt.IsNil)
	c.Assert(actions, qt.DeepEquals, []string{"install.perform", "install.remove_sample_data", "install.reset"})
}

func TestInstallRejectsBlankAdminEmail(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, body := env.do(c, http.MethodPost, "/api/admin/install", env.adminToken,
		`{"include_sample_data":true,"admin_user":{"email":"  "}}`)
	c.Assert(code, qt.Equals, fiber.StatusBadRequest)
	c.Assert(decode[installer.InstallResult](c, body).Success, qt.IsFalse)

	_, body = env.do(c, http.MethodGet, "/api/install/status", "", "")
	c.Assert(decode[installer.Status](c, body).IsInstalled, qt.IsFalse)
}

func TestInstallFailureReturnsResult(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	taken := models.Domain{Name: "sample-shop.example.com"}
	c.Assert(env.db.Create(&taken).Error, qt.IsNil)

	code, body := env.do(c, http.MethodPost, "/api/admin/install", env.adminToken, `{"include_sample_data":true}`)
	c.Assert(code, qt.Equals, fiber.StatusInternalServerError)

	result := decode[installer.InstallResult](c, body)
	c.Assert(result.Success, qt.IsFalse)
	c.Assert(result.Message, qt.Matches, "Installation failed: sample_data: .*")
}

func TestReferenceCatalogs(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, _ := env.do(c, http.MethodGet, "/api/reference/regulations", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusInternalServerError)

	code, _ = env.do(c, http.MethodPost, "/api/admin/install", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)

	code, body := env.do(c, http.MethodGet, "/api/reference/regulations", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	rows := decode[[]models.ReferenceRow](c, body)
	c.Assert(rows, qt.HasLen, len(installer.Regulations))
	c.Assert(rows[0].Name, qt.Equals, "GDPR")

	code, _ = env.do(c, http.MethodGet, "/api/reference/planets", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusNotFound)

	code, body = env.do(c, http.MethodGet, "/api/settings/alerts", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[[]models.DefaultAlertSetting](c, body), qt.HasLen, len(installer.DefaultAlertSettings))

	code, body = env.do(c, http.MethodGet, "/api/settings/retention", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[[]models.DefaultRetentionPolicy](c, body), qt.HasLen, len(installer.DefaultRetentionPolicies))
}

type dashboardBody struct {
	Installation installer.Status `json:"installation"`
	Counts       DashboardCounts  `json:"counts"`
}

func TestDashboardAndAlerts(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, _ := env.do(c, http.MethodPost, "/api/admin/install", env.adminToken, `{"include_sample_data":true}`)
	c.Assert(code, qt.Equals, fiber.StatusOK)

	code, body := env.do(c, http.MethodGet, "/api/dashboard", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	dash := decode[dashboardBody](c, body)
	c.Assert(dash.Installation.IsInstalled, qt.IsTrue)
	c.Assert(dash.Counts.DataTypes, qt.Equals, int64(5))
	c.Assert(dash.Counts.Domains, qt.Equals, int64(2))

	code, _ = env.do(c, http.MethodPost, "/api/admin/alerts/sweep", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusForbidden)

	code, body = env.do(c, http.MethodPost, "/api/admin/alerts/sweep", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	sweep := decode[alerts.SweepResult](c, body)
	c.Assert(sweep.Raised, qt.Equals, 2)

	code, body = env.do(c, http.MethodGet, "/api/alerts?limit=10", env.userToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[[]models.Alert](c, body), qt.HasLen, 2)
}

func TestLogin(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, _ := env.do(c, http.MethodPost, "/api/auth/login", "", `{"email":"dpo@acme.test","password":"wrong"}`)
	c.Assert(code, qt.Equals, fiber.StatusUnauthorized)

	code, body := env.do(c, http.MethodPost, "/api/auth/login", "", `{"email":" DPO@acme.test ","password":"s3cret-pass"}`)
	c.Assert(code, qt.Equals, fiber.StatusOK)

	resp := decode[LoginResponse](c, body)
	c.Assert(resp.Token, qt.Not(qt.Equals), "")
	c.Assert(resp.User.Role, qt.Equals, models.RoleAdmin)

	code, body = env.do(c, http.MethodGet, "/api/auth/profile", resp.Token, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[UserResponse](c, body).Email, qt.Equals, "dpo@acme.test")

	var actions []string
	c.Assert(env.db.Model(&models.ActivityLog{}).Order("id").Pluck("action", &actions).Error, qt.IsNil)
	c.Assert(actions, qt.DeepEquals, []string{"auth.login_failed", "auth.login"})
}

func TestProfileOfDeletedUser(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	token, err := middleware.GenerateToken("no-such-user", "gone@acme.test", models.RoleUser)
	c.Assert(err, qt.IsNil)

	for _, path := range []string{"/api/auth/profile", "/api/auth/2fa/setup"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "setup") {
			method = http.MethodPost
		}
		code, body := env.do(c, method, path, token, "")
		c.Assert(code, qt.Equals, fiber.StatusNotFound, qt.Commentf("%s", path))
		c.Assert(decode[map[string]string](c, body)["error"], qt.Equals, "User not found")
	}
}

func TestTwoFactorLifecycle(t *testing.T) {
	c := qt.New(t)
	env := setup(t)

	code, body := env.do(c, http.MethodPost, "/api/auth/2fa/setup", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusOK)
	secret := decode[Setup2FAResponse](c, body).Secret
	c.Assert(secret, qt.Not(qt.Equals), "")

	code, _ = env.do(c, http.MethodPost, "/api/auth/2fa/verify", env.adminToken, `{"code":"000000x"}`)
	c.Assert(code, qt.Equals, fiber.StatusBadRequest)

	code, _ = env.do(c, http.MethodPost, "/api/auth/2fa/verify", env.adminToken, codeBody(c, secret))
	c.Assert(code, qt.Equals, fiber.StatusOK)

	code, _ = env.do(c, http.MethodPost, "/api/auth/2fa/setup", env.adminToken, "")
	c.Assert(code, qt.Equals, fiber.StatusConflict)

	code, body = env.do(c, http.MethodPost, "/api/auth/login", "", `{"email":"dpo@acme.test","password":"s3cret-pass"}`)
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[LoginResponse](c, body), qt.DeepEquals, LoginResponse{Requires2FA: true})

	totpCode, err := totp.GenerateCode(secret, time.Now())
	c.Assert(err, qt.IsNil)
	code, body = env.do(c, http.MethodPost, "/api/auth/login", "",
		`{"email":"dpo@acme.test","password":"s3cret-pass","totp_code":"`+totpCode+`"}`)
	c.Assert(code, qt.Equals, fiber.StatusOK)
	c.Assert(decode[LoginResponse](c, body).User.TwoFactorEnabled, qt.IsTrue)

	code, _ = env.do(c, http.MethodPost, "/api/auth/2fa/disable", env.adminToken, `{"code":"bad"}`)
	c.Assert(code, qt.Equals, fiber.StatusBadRequest)

	code, _ = env.do(c, http.MethodPost, "/api/auth/2fa/disable", env.adminToken, codeBody(c, secret))
	c.Assert(code, qt.Equals, fiber.StatusOK)

	var user models.User
	c.Assert(env.db.First(&user, "email = ?", "dpo@acme.test").Error, qt.IsNil)
	c.Assert(user.TwoFactorEnabled, qt.IsFalse)
	c.Assert(user.TwoFactorSecret, qt.Equals, "")
}

func codeBody(c *qt.C, secret string) string {
	code, err := totp.GenerateCode(secret, time.Now())
	c.Assert(err, qt.IsNil)
	return `{"code":"` + code + `"}`
}

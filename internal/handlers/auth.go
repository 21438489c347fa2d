package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/middleware"
	"privacy-guard/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type LoginResponse struct {
	Token       string        `json:"token,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
	Requires2FA bool          `json:"requires_2fa,omitempty"`
}

type UserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Role:             user.Role,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}
}

var errInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")

// authenticate checks email and password and, when 2FA is on, the TOTP
// code. A nil user with a nil error means a code is still required.
func authenticate(c *fiber.Ctx, req LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := database.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		recordActivity(database.DB, c, user.ID, "auth.login_failed", "bad password")
		return nil, errInvalidCredentials
	}

	if !user.TwoFactorEnabled {
		return &user, nil
	}
	if req.TOTPCode == "" {
		return nil, nil
	}
	if !totp.Validate(req.TOTPCode, user.TwoFactorSecret) {
		recordActivity(database.DB, c, user.ID, "auth.login_failed", "bad 2FA code")
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid 2FA code")
	}
	return &user, nil
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}

	user, err := authenticate(c, req)
	if err != nil {
		return errorJSON(c, err)
	}
	if user == nil {
		return c.JSON(LoginResponse{Requires2FA: true})
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return errorJSON(c, fmt.Errorf("generate token: %w", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(config.AppConfig.JWT.Expiry.Seconds()),
		Path:     "/",
	})

	recordActivity(database.DB, c, user.ID, "auth.login", "")

	return c.JSON(LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func Logout(c *fiber.Ctx) error {
	c.ClearCookie("token")
	recordActivity(database.DB, c, currentUserID(c), "auth.logout", "")
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// errorJSON writes err as the JSON error body, using the status carried by a
// *fiber.Error and 500 otherwise.
func errorJSON(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// loadCurrentUser resolves the authenticated user from the request locals.
func loadCurrentUser(c *fiber.Ctx) (*models.User, error) {
	userID := currentUserID(c)
	if userID == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	var user models.User
	err := database.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// saveTwoFactor writes both 2FA columns, including zero values.
func saveTwoFactor(c *fiber.Ctx, user *models.User) error {
	return database.DB.WithContext(c.UserContext()).Model(user).
		Select("two_factor_enabled", "two_factor_secret").
		Updates(models.User{
			TwoFactorEnabled: user.TwoFactorEnabled,
			TwoFactorSecret:  user.TwoFactorSecret,
		}).Error
}

func GetProfile(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(toUserResponse(user))
}

type Setup2FAResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

// Setup2FA stores a fresh secret. 2FA stays off until Verify2FA confirms a
// code generated from it.
func Setup2FA(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if err != nil {
		return errorJSON(c, err)
	}
	if user.TwoFactorEnabled {
		return errorJSON(c, fiber.NewError(fiber.StatusConflict, "2FA is already enabled"))
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Privacy Guard",
		AccountName: user.Email,
	})
	if err != nil {
		return errorJSON(c, fmt.Errorf("generate 2FA secret: %w", err))
	}

	user.TwoFactorSecret = key.Secret()
	if err := saveTwoFactor(c, user); err != nil {
		return errorJSON(c, fmt.Errorf("save 2FA secret: %w", err))
	}

	return c.JSON(Setup2FAResponse{
		Secret: key.Secret(),
		QRCode: key.URL(),
	})
}

type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

// checkTwoFactorCode parses the request code and validates it against the
// user's pending or active secret.
func checkTwoFactorCode(c *fiber.Ctx, user *models.User) error {
	var req TwoFactorCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if user.TwoFactorSecret == "" {
		return fiber.NewError(fiber.StatusBadRequest, "2FA not set up")
	}
	if !totp.Validate(req.Code, user.TwoFactorSecret) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid 2FA code")
	}
	return nil
}

func Verify2FA(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if err != nil {
		return errorJSON(c, err)
	}
	if err := checkTwoFactorCode(c, user); err != nil {
		return errorJSON(c, err)
	}

	user.TwoFactorEnabled = true
	if err := saveTwoFactor(c, user); err != nil {
		return errorJSON(c, fmt.Errorf("enable 2FA: %w", err))
	}

	recordActivity(database.DB, c, user.ID, "auth.2fa_enabled", "")
	return c.JSON(fiber.Map{"message": "2FA enabled successfully"})
}

// Disable2FA turns 2FA off. A current code is required while it is enabled.
func Disable2FA(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if err != nil {
		return errorJSON(c, err)
	}
	if user.TwoFactorEnabled {
		if err := checkTwoFactorCode(c, user); err != nil {
			return errorJSON(c, err)
		}
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	if err := saveTwoFactor(c, user); err != nil {
		return errorJSON(c, fmt.Errorf("disable 2FA: %w", err))
	}

	recordActivity(database.DB, c, user.ID, "auth.2fa_disabled", "")
	return c.JSON(fiber.Map{"message": "2FA disabled successfully"})
}

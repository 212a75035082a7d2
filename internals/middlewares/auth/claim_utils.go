package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
)

/* ======== Extractors ======== */

// extractBearerToken reads "Authorization: Bearer <t>", falling back to the
// access_token cookie.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("no token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("empty token")
	}
	return tok, nil
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	exp, err := claimInt(claims, "exp")
	if err != nil {
		return fmt.Errorf("exp: %w", err)
	}
	expTime := time.Unix(exp, 0).UTC()
	if time.Now().UTC().After(expTime.Add(skew)) {
		return fmt.Errorf("token expired at %v", expTime)
	}
	return nil
}

// claimInt accepts JSON numbers and numeric strings.
func claimInt(claims jwt.MapClaims, key string) (int64, error) {
	raw, ok := claims[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s type", key)
	}
}

// extractUserID takes "user_id", then "id".
func extractUserID(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"user_id", "id"} {
		if _, ok := claims[key]; !ok {
			continue
		}
		n, err := claimInt(claims, key)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid user id")
		}
		return uint(n), nil
	}
	return 0, fmt.Errorf("no user id")
}

/* ======== Account checks ======== */

type accountState struct {
	SchoolID uint
	Role     string
	Status   string
}

// loadAccount reads the live user row; the token's role claim is not trusted alone.
func loadAccount(db *gorm.DB, userID uint) (*accountState, error) {
	var acc accountState
	err := db.Table("users").
		Select("school_id, role, status").
		Where("id = ? AND trash = ?", userID, false).
		Take(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (a *accountState) active() bool {
	return a.Status == "" || strings.EqualFold(a.Status, "active")
}

func (a *accountState) staff() bool {
	return constants.IsStaffRole(strings.ToLower(a.Role))
}

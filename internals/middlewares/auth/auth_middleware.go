package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/configs"
	"schoolstaff_backend/internals/constants"
	helper "schoolstaff_backend/internals/helpers"
)

const LocRole = "role"

// StaffAuth guards the staff API when JWT_SECRET is configured. A valid token
// puts user_id, school_id and role into Locals, where the handlers pick them up
// as defaults. Without a secret the middleware is a pass-through.
func StaffAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := configs.JWTSecret
		if secret == "" {
			return c.Next()
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}); err != nil {
			log.Printf("[Auth] token parse: %v", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}
		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		acc, err := loadAccount(db.WithContext(helper.ReqCtx(c)), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
		}
		if err != nil {
			log.Printf("[Auth] load user %d: %v", userID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		}
		if !acc.active() {
			return helper.JsonError(c, fiber.StatusForbidden, "Account is disabled")
		}
		if !acc.staff() {
			return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStaff("the staff API"))
		}

		c.Locals(helper.LocUserID, userID)
		c.Locals(helper.LocSchoolID, acc.SchoolID)
		c.Locals(LocRole, acc.Role)
		return c.Next()
	}
}

package helper

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys written by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocSchoolID = "school_id"
)

// ParseUintParam reads a positive integer path param.
func ParseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, InvalidArgument("invalid %s", name)
	}
	return uint(n), nil
}

// QueryUint reads an optional positive integer query value; 0 when absent.
func QueryUint(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, InvalidArgument("invalid %s", name)
	}
	return uint(n), nil
}

// ResolveUserID takes ?<name>= first, then the token's user id.
func ResolveUserID(c *fiber.Ctx, name string) (uint, error) {
	id, err := QueryUint(c, name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}
	return localUint(c, LocUserID), nil
}

// ResolveSchoolID takes ?school_id= first, then the token's school id.
func ResolveSchoolID(c *fiber.Ctx) (uint, error) {
	id, err := QueryUint(c, "school_id")
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}
	return localUint(c, LocSchoolID), nil
}

// RequireUserID is ResolveUserID that rejects a missing value.
func RequireUserID(c *fiber.Ctx, name string) (uint, error) {
	id, err := ResolveUserID(c, name)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, InvalidArgument("%s is required", name)
	}
	return id, nil
}

func localUint(c *fiber.Ctx, key string) uint {
	switch v := c.Locals(key).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

// ReqCtx carries the request deadline set by the request-id middleware.
func ReqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"schoolstaff_backend/internals/configs"
)

const DateLayout = "2006-01-02"

// Locals keys set by the JWT middleware
const (
	LocSchoolTimezone = "school_timezone" // string, e.g. "Asia/Kolkata"
	LocSchoolLoc      = "school_loc"      // *time.Location
)

// GetSchoolLocation resolves the school's zone:
// 1) c.Locals("school_loc")
// 2) c.Locals("school_timezone") loaded and cached
// 3) SCHOOL_TIMEZONE env (default Asia/Kolkata)
// 4) UTC
func GetSchoolLocation(c *fiber.Ctx) *time.Location {
	if c != nil {
		if loc, ok := c.Locals(LocSchoolLoc).(*time.Location); ok && loc != nil {
			return loc
		}
		if s, ok := c.Locals(LocSchoolTimezone).(string); ok && strings.TrimSpace(s) != "" {
			if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
				c.Locals(LocSchoolLoc, loc)
				return loc
			}
		}
	}
	if loc, err := time.LoadLocation(configs.GetEnv("SCHOOL_TIMEZONE", "Asia/Kolkata")); err == nil {
		if c != nil {
			c.Locals(LocSchoolLoc, loc)
		}
		return loc
	}
	return time.UTC
}

func NowInSchool(c *fiber.Ctx) time.Time {
	return time.Now().In(GetSchoolLocation(c))
}

// Today is the current calendar day at the school, as a UTC-midnight date.
func Today(c *fiber.Ctx) datatypes.Date {
	return DateOf(NowInSchool(c))
}

/* ===============================
   Calendar dates
=================================*/

// DateOf drops the clock and zone: the same Y-M-D at UTC midnight.
// All date columns are stored this way so equality and ranges compare cleanly.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate accepts YYYY-MM-DD (and RFC3339, using only its date part).
func ParseDate(s string) (datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return DateOf(t), nil
}

// ParseOptionalDate: "" → nil.
func ParseOptionalDate(s string) (*datatypes.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func Format(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// DaysInRange counts calendar days in [from, to]; 0 when inverted.
func DaysInRange(from, to datatypes.Date) int {
	f, t := time.Time(DateOf(time.Time(from))), time.Time(DateOf(time.Time(to)))
	if t.Before(f) {
		return 0
	}
	return int(t.Sub(f).Hours()/24) + 1
}

// EachDay lists every date from..to inclusive, ascending.
func EachDay(from, to datatypes.Date) []datatypes.Date {
	n := DaysInRange(from, to)
	out := make([]datatypes.Date, 0, n)
	start := time.Time(DateOf(time.Time(from)))
	for i := 0; i < n; i++ {
		out = append(out, datatypes.Date(start.AddDate(0, 0, i)))
	}
	return out
}

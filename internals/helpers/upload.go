package helper

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IsMultipart reports a multipart/form-data request.
func IsMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, "multipart/form-data")
}

// OptionalFile returns the first file found under fieldNames, or nil.
// Non-multipart requests simply have no file.
func OptionalFile(c *fiber.Ctx, fieldNames ...string) *multipart.FileHeader {
	if !IsMultipart(c) {
		return nil
	}
	for _, fn := range fieldNames {
		if fh, err := c.FormFile(fn); err == nil && fh != nil {
			return fh
		}
	}
	return nil
}

// FormFiles returns every file under field in upload order.
func FormFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	if !IsMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// FormJSON decodes a JSON-encoded multipart field into out. A missing or blank
// field leaves out untouched; JSON bodies are handled by ParseBody instead.
func FormJSON(c *fiber.Ctx, field string, out any) error {
	if !IsMultipart(c) {
		return nil
	}
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return InvalidArgument("%s is not valid JSON", field)
	}
	return nil
}

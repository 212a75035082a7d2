package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/features/staff/exams/model"
	"schoolstaff_backend/internals/features/staff/exams/route"
	"schoolstaff_backend/internals/testutil"
)

func newExamApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	app, api := testutil.NewApp()
	route.ExamRoutes(api, db)
	return app, db
}

func examPayload(name, date string) map[string]any {
	return map[string]any{
		"school_id":     testutil.SchoolID,
		"class_id":      testutil.ClassID,
		"subject_id":    testutil.SubjectID,
		"internal_name": name,
		"max_marks":     50,
		"date":          date,
		"marks": []map[string]any{
			{"student_id": testutil.StudentID, "marks_obtained": 41.5},
			{"student_id": testutil.StudentB, "marks_obtained": 37},
		},
	}
}

func createExam(t *testing.T, app *fiber.App, name, date string) uint {
	t.Helper()
	status, body := testutil.JSON(t, app, http.MethodPost, "/exams", examPayload(name, date))
	require.Equal(t, http.StatusCreated, status, body)
	return uint(body.Data()["id"].(float64))
}

func TestCreateExamWithMarks(t *testing.T) {
	app, db := newExamApp(t)
	id := createExam(t, app, "Unit Test 1", "2024-02-01")

	var marks []model.MarkModel
	require.NoError(t, db.Where("internal_id = ?", id).Order("student_id").Find(&marks).Error)
	require.Len(t, marks, 2)
	assert.Equal(t, 41.5, marks[0].MarksObtained)

	status, body := testutil.JSON(t, app, http.MethodGet, fmt.Sprintf("/exams/%d", id), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unit Test 1", body.Data()["internal_name"])
	assert.Len(t, body.Data()["marks"], 2)
	assert.Equal(t, "Mathematics", body.Data()["subject"].(map[string]any)["subject_name"])
}

func TestCreateExamValidation(t *testing.T) {
	app, _ := newExamApp(t)

	bad := examPayload("Unit Test", "01-02-2024")
	status, body := testutil.JSON(t, app, http.MethodPost, "/exams", bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])
	assert.Contains(t, body["errors"], "date")

	over := examPayload("Unit Test", "2024-02-01")
	over["marks"] = []map[string]any{{"student_id": testutil.StudentID, "marks_obtained": 51}}
	status, _ = testutil.JSON(t, app, http.MethodPost, "/exams", over)
	assert.Equal(t, http.StatusBadRequest, status)

	stranger := examPayload("Unit Test", "2024-02-01")
	stranger["marks"] = []map[string]any{{"student_id": 9999, "marks_obtained": 5}}
	status, _ = testutil.JSON(t, app, http.MethodPost, "/exams", stranger)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListExamsPaginationAndSearch(t *testing.T) {
	app, _ := newExamApp(t)
	createExam(t, app, "Unit Test 1", "2024-02-01")
	createExam(t, app, "Unit Test 2", "2024-02-08")
	createExam(t, app, "Midterm", "2024-03-01")

	status, body := testutil.JSON(t, app, http.MethodGet, "/exams?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.List(), 2)
	assert.EqualValues(t, 3, body.Pagination()["total"])
	assert.EqualValues(t, 2, body.Pagination()["total_pages"])
	assert.Equal(t, true, body.Pagination()["has_next"])

	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?page=9&limit=2", nil)
	assert.Empty(t, body.List())
	assert.EqualValues(t, 3, body.Pagination()["total"])
	assert.EqualValues(t, 2, body.Pagination()["total_pages"])

	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?q=unit%20TEST", nil)
	assert.Len(t, body.List(), 2)

	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?q=2024-03-01", nil)
	assert.Len(t, body.List(), 1)

	_, all := testutil.JSON(t, app, http.MethodGet, "/exams", nil)
	_, empty := testutil.JSON(t, app, http.MethodGet, "/exams?q=", nil)
	assert.Equal(t, all.Pagination()["total"], empty.Pagination()["total"])
	assert.Equal(t, all.List(), empty.List())

	// garbage paging falls back to defaults
	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?page=-3&limit=0", nil)
	assert.EqualValues(t, 1, body.Pagination()["page"])
	assert.EqualValues(t, 10, body.Pagination()["per_page"])
}

func TestUpdateExamAndMark(t *testing.T) {
	app, db := newExamApp(t)
	id := createExam(t, app, "Unit Test 1", "2024-02-01")

	status, body := testutil.JSON(t, app, http.MethodPatch, fmt.Sprintf("/exams/%d", id), map[string]any{"internal_name": "Unit Test 1 (revised)"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Unit Test 1 (revised)", body.Data()["internal_name"])

	status, _ = testutil.JSON(t, app, http.MethodPatch, fmt.Sprintf("/exams/%d", id), map[string]any{"max_marks": 40})
	assert.Equal(t, http.StatusBadRequest, status, "an existing mark is 41.5")

	var mark model.MarkModel
	require.NoError(t, db.Where("internal_id = ? AND student_id = ?", id, testutil.StudentB).First(&mark).Error)

	status, _ = testutil.JSON(t, app, http.MethodPatch, fmt.Sprintf("/exams/marks/%d", mark.ID), map[string]any{"marks_obtained": 45})
	assert.Equal(t, http.StatusOK, status)
	status, _ = testutil.JSON(t, app, http.MethodPatch, fmt.Sprintf("/exams/marks/%d", mark.ID), map[string]any{"marks_obtained": 60})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = testutil.JSON(t, app, http.MethodPatch, "/exams/marks/99999", map[string]any{"marks_obtained": 1})
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, db.First(&mark, mark.ID).Error)
	assert.Equal(t, 45.0, mark.MarksObtained)
}

func TestExamTrashRestorePurge(t *testing.T) {
	app, db := newExamApp(t)
	id := createExam(t, app, "Unit Test 1", "2024-02-01")
	createExam(t, app, "Unit Test 2", "2024-02-08")
	path := fmt.Sprintf("/exams/%d", id)

	// purge only works from the trash
	status, _ := testutil.JSON(t, app, http.MethodDelete, path+"/permanent", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = testutil.JSON(t, app, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = testutil.JSON(t, app, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body := testutil.JSON(t, app, http.MethodGet, "/exams", nil)
	assert.EqualValues(t, 1, body.Pagination()["total"])
	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?trash=true", nil)
	assert.EqualValues(t, 1, body.Pagination()["total"])
	assert.EqualValues(t, id, body.List()[0].(map[string]any)["id"])
	_, body = testutil.JSON(t, app, http.MethodGet, "/exams?trash=all", nil)
	assert.EqualValues(t, 2, body.Pagination()["total"])

	status, _ = testutil.JSON(t, app, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = testutil.JSON(t, app, http.MethodPost, path+"/restore", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = testutil.JSON(t, app, http.MethodPost, path+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, _ = testutil.JSON(t, app, http.MethodDelete, path, nil)
	status, body = testutil.JSON(t, app, http.MethodDelete, path+"/permanent", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body.Data()["marks_deleted"])

	var exams, marks int64
	require.NoError(t, db.Model(&model.InternalExamModel{}).Where("id = ?", id).Count(&exams).Error)
	require.NoError(t, db.Model(&model.MarkModel{}).Where("internal_id = ?", id).Count(&marks).Error)
	assert.Zero(t, exams)
	assert.Zero(t, marks)
}

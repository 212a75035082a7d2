package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	"schoolstaff_backend/internals/features/staff/homeworks/model"
	"schoolstaff_backend/internals/features/staff/homeworks/route"
	"schoolstaff_backend/internals/testutil"
)

type homeworkEnv struct {
	app  *fiber.App
	db   *gorm.DB
	root string
}

func newHomeworkEnv(t *testing.T) homeworkEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	store, root := testutil.NewStore(t)
	app, api := testutil.NewApp()
	route.HomeworkRoutes(api, db, store)
	return homeworkEnv{app: app, db: db, root: root}
}

func homeworkFields() map[string]string {
	return map[string]string{
		"school_id":   fmt.Sprint(testutil.SchoolID),
		"teacher_id":  fmt.Sprint(testutil.TeacherID),
		"class_id":    fmt.Sprint(testutil.ClassID),
		"subject_id":  fmt.Sprint(testutil.SubjectID),
		"description": "Fractions worksheet, page 12",
		"due_date":    "2024-02-10",
		"assignments": fmt.Sprintf(`[{"student_id":%d},{"student_id":%d}]`, testutil.StudentID, testutil.StudentB),
	}
}

func (e homeworkEnv) create(t *testing.T) map[string]any {
	t.Helper()
	status, body := testutil.Multipart(t, e.app, http.MethodPost, "/homework", homeworkFields(),
		testutil.Upload{Field: "file", Filename: "worksheet.pdf", Content: []byte("%PDF-1.4 worksheet")})
	require.Equal(t, http.StatusCreated, status, body)
	return body.Data()
}

func TestCreateHomeworkStoresFileAndAssignments(t *testing.T) {
	e := newHomeworkEnv(t)
	hw := e.create(t)

	file, _ := hw["file"].(string)
	require.NotEmpty(t, file)
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderHomeworks, file))

	var rows []model.HomeworkAssignmentModel
	require.NoError(t, e.db.Where("homework_id = ?", hw["id"]).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, constants.HomeworkPending, r.Status)
	}
}

func TestCreateHomeworkDuplicateReturnsExisting(t *testing.T) {
	e := newHomeworkEnv(t)
	first := e.create(t)

	status, body := testutil.JSON(t, e.app, http.MethodPost, "/homework", map[string]any{
		"school_id":   testutil.SchoolID,
		"teacher_id":  testutil.TeacherID,
		"class_id":    testutil.ClassID,
		"subject_id":  testutil.SubjectID,
		"description": "Fractions worksheet, page 12",
		"due_date":    "2024-02-10",
		"assignments": []map[string]any{{"student_id": testutil.StudentID}},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Homework already exists", body["message"])
	assert.Equal(t, first["id"], body.Data()["id"])

	var n int64
	require.NoError(t, e.db.Model(&model.HomeworkModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateHomeworkRejectsBadInput(t *testing.T) {
	e := newHomeworkEnv(t)

	fields := homeworkFields()
	delete(fields, "description")
	status, body := testutil.Multipart(t, e.app, http.MethodPost, "/homework", fields)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "description")

	fields = homeworkFields()
	fields["assignments"] = "not json"
	status, _ = testutil.Multipart(t, e.app, http.MethodPost, "/homework", fields)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = testutil.Multipart(t, e.app, http.MethodPost, "/homework", homeworkFields(),
		testutil.Upload{Field: "file", Filename: "payload.exe", Content: []byte("MZ")})
	assert.Equal(t, http.StatusBadRequest, status)

	var n int64
	require.NoError(t, e.db.Model(&model.HomeworkModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateHomeworkReplacesFile(t *testing.T) {
	e := newHomeworkEnv(t)
	hw := e.create(t)
	oldFile := hw["file"].(string)
	path := fmt.Sprintf("/homework/%v", hw["id"])

	status, body := testutil.Multipart(t, e.app, http.MethodPatch, path,
		map[string]string{"description": "Fractions worksheet, pages 12-13"},
		testutil.Upload{Field: "file", Filename: "worksheet-v2.pdf", Content: []byte("%PDF-1.4 v2")})
	require.Equal(t, http.StatusOK, status, body)

	newFile := body.Data()["file"].(string)
	assert.NotEqual(t, oldFile, newFile)
	assert.Equal(t, "Fractions worksheet, pages 12-13", body.Data()["description"])
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderHomeworks, newFile))
	assert.False(t, testutil.FileExists(t, e.root, constants.FolderHomeworks, oldFile))

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"description": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = testutil.JSON(t, e.app, http.MethodPatch, "/homework/999", map[string]any{"description": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateAssignmentWithSolvedFile(t *testing.T) {
	e := newHomeworkEnv(t)
	hw := e.create(t)

	var a model.HomeworkAssignmentModel
	require.NoError(t, e.db.Where("homework_id = ? AND student_id = ?", hw["id"], testutil.StudentID).First(&a).Error)

	status, body := testutil.Multipart(t, e.app, http.MethodPatch, fmt.Sprintf("/homework/assignments/%d", a.ID),
		map[string]string{"status": constants.HomeworkSubmitted, "points": "8.5"},
		testutil.Upload{Field: "solved_file", Filename: "answers.txt", Content: []byte("1/2 + 1/4 = 3/4")})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, constants.HomeworkSubmitted, body.Data()["status"])
	assert.Equal(t, 8.5, body.Data()["points"])
	solved := body.Data()["solved_file"].(string)
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderSolvedHomeworks, solved))

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, fmt.Sprintf("/homework/assignments/%d", a.ID), map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/homework/assignments/%d", a.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Anu Joseph", body.Data()["student"].(map[string]any)["full_name"])
}

func TestBulkUpdateAssignmentsIsAllOrNothing(t *testing.T) {
	e := newHomeworkEnv(t)
	hw := e.create(t)
	path := fmt.Sprintf("/homework/%v/assignments", hw["id"])

	status, body := testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"updates": []map[string]any{
		{"student_id": testutil.StudentID, "status": constants.HomeworkCompleted, "points": 9},
		{"student_id": testutil.StudentC, "status": constants.HomeworkCompleted},
	}})
	require.Equal(t, http.StatusBadRequest, status, body)

	var a model.HomeworkAssignmentModel
	require.NoError(t, e.db.Where("homework_id = ? AND student_id = ?", hw["id"], testutil.StudentID).First(&a).Error)
	assert.Equal(t, constants.HomeworkPending, a.Status)

	status, body = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"updates": []map[string]any{
		{"student_id": testutil.StudentID, "status": constants.HomeworkCompleted, "points": 9},
		{"student_id": testutil.StudentB, "status": constants.HomeworkSubmitted},
	}})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body.Data()["updated"])

	var rows []model.HomeworkAssignmentModel
	require.NoError(t, e.db.Where("homework_id = ?", hw["id"]).Order("student_id").Find(&rows).Error)
	assert.Equal(t, constants.HomeworkCompleted, rows[0].Status)
	require.NotNil(t, rows[0].Points)
	assert.Equal(t, 9.0, *rows[0].Points)
	assert.Equal(t, constants.HomeworkSubmitted, rows[1].Status)
}

func TestListHomeworkFilters(t *testing.T) {
	e := newHomeworkEnv(t)
	e.create(t)
	status, _ := testutil.JSON(t, e.app, http.MethodPost, "/homework", map[string]any{
		"school_id":   testutil.SchoolID,
		"teacher_id":  testutil.StaffID,
		"class_id":    testutil.OtherClass,
		"subject_id":  testutil.SubjectID,
		"description": "Read chapter 4",
	})
	require.Equal(t, http.StatusCreated, status)

	_, body := testutil.JSON(t, e.app, http.MethodGet, "/homework", nil)
	assert.EqualValues(t, 2, body.Pagination()["total"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, "/homework?q=FRACTIONS", nil)
	require.Len(t, body.List(), 1)
	assert.Len(t, body.List()[0].(map[string]any)["assignments"], 2)

	_, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/homework?teacher_id=%d", testutil.StaffID), nil)
	require.Len(t, body.List(), 1)
	assert.Equal(t, "Read chapter 4", body.List()[0].(map[string]any)["description"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, "/homework?q=100%25", nil)
	assert.Empty(t, body.List())
}

func TestPurgeHomeworkRemovesChildrenAndFiles(t *testing.T) {
	e := newHomeworkEnv(t)
	hw := e.create(t)
	file := hw["file"].(string)
	path := fmt.Sprintf("/homework/%v", hw["id"])

	var a model.HomeworkAssignmentModel
	require.NoError(t, e.db.Where("homework_id = ?", hw["id"]).First(&a).Error)
	status, body := testutil.Multipart(t, e.app, http.MethodPatch, fmt.Sprintf("/homework/assignments/%d", a.ID), nil,
		testutil.Upload{Field: "solved_file", Filename: "answers.txt", Content: []byte("done")})
	require.Equal(t, http.StatusOK, status, body)
	solved := body.Data()["solved_file"].(string)

	status, _ = testutil.JSON(t, e.app, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)
	_, body = testutil.JSON(t, e.app, http.MethodGet, "/homework?trash=true", nil)
	assert.EqualValues(t, 1, body.Pagination()["total"])

	status, body = testutil.JSON(t, e.app, http.MethodDelete, path+"/permanent", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body.Data()["assignments_deleted"])

	var n int64
	require.NoError(t, e.db.Model(&model.HomeworkAssignmentModel{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.False(t, testutil.FileExists(t, e.root, constants.FolderHomeworks, file))
	assert.False(t, testutil.FileExists(t, e.root, constants.FolderSolvedHomeworks, solved))

	status, _ = testutil.JSON(t, e.app, http.MethodPost, path+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

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
	attendanceModel "schoolstaff_backend/internals/features/staff/attendances/model"
	"schoolstaff_backend/internals/features/staff/leave_requests/route"
	"schoolstaff_backend/internals/testutil"
)

type leaveEnv struct {
	app  *fiber.App
	db   *gorm.DB
	root string
}

func newLeaveEnv(t *testing.T) leaveEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	store, root := testutil.NewStore(t)
	app, api := testutil.NewApp()
	route.LeaveRequestRoutes(api, db, store)
	return leaveEnv{app: app, db: db, root: root}
}

func staffLeave(from, to string) map[string]any {
	return map[string]any{
		"school_id":  testutil.SchoolID,
		"user_id":    testutil.StaffID,
		"from_date":  from,
		"to_date":    to,
		"leave_type": "casual",
		"reason":     "family function",
	}
}

func studentLeave(from, to string) map[string]any {
	body := staffLeave(from, to)
	body["student_id"] = testutil.StudentID
	body["leave_type"] = "sick"
	body["reason"] = "viral fever"
	return body
}

func (e leaveEnv) createStudentLeave(t *testing.T, from, to string) map[string]any {
	t.Helper()
	status, body := testutil.JSON(t, e.app, http.MethodPost, "/leave-requests/students", studentLeave(from, to))
	require.Equal(t, http.StatusCreated, status, body)
	return body.Data()
}

func TestCreateStaffLeave(t *testing.T) {
	e := newLeaveEnv(t)

	status, body := testutil.Multipart(t, e.app, http.MethodPost, "/leave-requests", map[string]string{
		"school_id":      fmt.Sprint(testutil.SchoolID),
		"user_id":        fmt.Sprint(testutil.StaffID),
		"from_date":      "2024-02-01",
		"to_date":        "2024-02-02",
		"leave_type":     "casual",
		"reason":         "family function",
		"leave_duration": "full day",
	}, testutil.Upload{Field: "attachment", Filename: "invite.pdf", Content: []byte("%PDF-1.4 invite")})
	require.Equal(t, http.StatusCreated, status, body)

	leave := body.Data()
	assert.Equal(t, constants.LeaveRoleStaff, leave["role"])
	assert.Equal(t, constants.LeavePending, leave["status"])
	assert.Equal(t, "full day", leave["leave_duration"])
	assert.Nil(t, leave["student_id"])
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderLeaveRequests, leave["attachment"].(string)))
}

func TestCreateLeaveRejectsBadInput(t *testing.T) {
	e := newLeaveEnv(t)

	status, _ := testutil.JSON(t, e.app, http.MethodPost, "/leave-requests", staffLeave("2024-02-05", "2024-02-01"))
	assert.Equal(t, http.StatusBadRequest, status, "inverted range")

	body := staffLeave("2024-02-01", "2024-02-02")
	delete(body, "reason")
	status, resp := testutil.JSON(t, e.app, http.MethodPost, "/leave-requests", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])

	status, _ = testutil.JSON(t, e.app, http.MethodPost, "/leave-requests/students", staffLeave("2024-02-01", "2024-02-02"))
	assert.Equal(t, http.StatusBadRequest, status, "student_id is required")

	body = studentLeave("2024-02-01", "2024-02-02")
	body["student_id"] = 999
	status, _ = testutil.JSON(t, e.app, http.MethodPost, "/leave-requests/students", body)
	assert.Equal(t, http.StatusBadRequest, status, "unknown student")
}

func TestCreateLeaveDuplicateIsConflict(t *testing.T) {
	e := newLeaveEnv(t)
	e.createStudentLeave(t, "2024-01-10", "2024-01-12")

	status, body := testutil.JSON(t, e.app, http.MethodPost, "/leave-requests/students", studentLeave("2024-01-10", "2024-01-12"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["error_code"])

	// the same range as staff leave is a different request
	status, _ = testutil.JSON(t, e.app, http.MethodPost, "/leave-requests", staffLeave("2024-01-10", "2024-01-12"))
	assert.Equal(t, http.StatusCreated, status)
}

func TestListLeaveRequests(t *testing.T) {
	e := newLeaveEnv(t)
	e.createStudentLeave(t, "2024-01-10", "2024-01-12")
	status, _ := testutil.JSON(t, e.app, http.MethodPost, "/leave-requests", staffLeave("2024-03-01", "2024-03-01"))
	require.Equal(t, http.StatusCreated, status)

	status, _ = testutil.JSON(t, e.app, http.MethodGet, "/leave-requests", nil)
	assert.Equal(t, http.StatusBadRequest, status, "user_id is required")

	path := fmt.Sprintf("/leave-requests?user_id=%d", testutil.StaffID)
	_, body := testutil.JSON(t, e.app, http.MethodGet, path, nil)
	assert.EqualValues(t, 2, body.Pagination()["total"])
	first := body.List()[0].(map[string]any)
	assert.Equal(t, "Asha Menon", first["user"].(map[string]any)["name"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, path+"&date=2024-01-11", nil)
	require.Len(t, body.List(), 1)
	assert.Equal(t, "viral fever", body.List()[0].(map[string]any)["reason"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, path+"&q=FAMILY", nil)
	assert.Len(t, body.List(), 1)

	_, body = testutil.JSON(t, e.app, http.MethodGet, path+"&status=approved", nil)
	assert.Empty(t, body.List())

	status, _ = testutil.JSON(t, e.app, http.MethodGet, path+"&date=11-01-2024", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/leave-requests?user_id=%d", testutil.TeacherID), nil)
	assert.EqualValues(t, 0, body.Pagination()["total"])
}

func TestUpdateLeaveOnlyWhilePending(t *testing.T) {
	e := newLeaveEnv(t)
	leave := e.createStudentLeave(t, "2024-01-10", "2024-01-12")
	path := fmt.Sprintf("/leave-requests/students/%v?user_id=%d", leave["id"], testutil.StaffID)

	status, body := testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"to_date": "2024-01-13", "reason": "fever, doctor advised rest"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "fever, doctor advised rest", body.Data()["reason"])

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"to_date": "2024-01-01"})
	assert.Equal(t, http.StatusBadRequest, status, "inverted range")

	status, _ = testutil.JSON(t, e.app, http.MethodPatch,
		fmt.Sprintf("/leave-requests/%v?user_id=%d", leave["id"], testutil.StaffID), map[string]any{"reason": "x"})
	assert.Equal(t, http.StatusNotFound, status, "staff route does not edit student leave")

	status, _ = testutil.JSON(t, e.app, http.MethodPatch,
		fmt.Sprintf("/leave-requests/%v/decision?status=rejected&user_id=%d", leave["id"], testutil.ApproverID), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"reason": "changed my mind"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDecisionApprovesAndMarksAttendance(t *testing.T) {
	e := newLeaveEnv(t)
	leave := e.createStudentLeave(t, "2024-01-10", "2024-01-12")
	path := fmt.Sprintf("/leave-requests/%v/decision", leave["id"])

	status, _ := testutil.JSON(t, e.app, http.MethodPatch, path+"?status=approved", nil)
	assert.Equal(t, http.StatusBadRequest, status, "approver is required")

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, fmt.Sprintf("%s?status=maybe&user_id=%d", path, testutil.ApproverID), nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := testutil.JSON(t, e.app, http.MethodPatch,
		fmt.Sprintf("%s?status=approved&user_id=%d&admin_remarks=get%%20well", path, testutil.ApproverID), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, constants.LeaveApproved, body.Data()["status"])
	assert.Equal(t, "get well", body.Data()["admin_remarks"])
	assert.EqualValues(t, testutil.ApproverID, body.Data()["approved_by"])

	var marks []attendanceModel.AttendanceMarkedModel
	require.NoError(t, e.db.Where("student_id = ?", testutil.StudentID).Find(&marks).Error)
	require.Len(t, marks, 3)
	for _, m := range marks {
		assert.Equal(t, constants.AttendanceLeave, m.Status)
	}

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, "/leave-requests/999/decision?status=approved&user_id=3", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLeaveLifecycle(t *testing.T) {
	e := newLeaveEnv(t)
	status, body := testutil.Multipart(t, e.app, http.MethodPost, "/leave-requests/students", map[string]string{
		"school_id":  fmt.Sprint(testutil.SchoolID),
		"user_id":    fmt.Sprint(testutil.StaffID),
		"student_id": fmt.Sprint(testutil.StudentID),
		"from_date":  "2024-01-10",
		"to_date":    "2024-01-10",
		"leave_type": "sick",
		"reason":     "dentist",
	}, testutil.Upload{Field: "attachment", Filename: "note.txt", Content: []byte("appointment at 10")})
	require.Equal(t, http.StatusCreated, status, body)
	id := body.Data()["id"]
	attachment := body.Data()["attachment"].(string)
	q := fmt.Sprintf("?user_id=%d", testutil.StaffID)

	status, _ = testutil.JSON(t, e.app, http.MethodDelete, fmt.Sprintf("/leave-requests/%v?user_id=%d", id, testutil.TeacherID), nil)
	assert.Equal(t, http.StatusNotFound, status, "only the requester may trash it")

	status, _ = testutil.JSON(t, e.app, http.MethodDelete, fmt.Sprintf("/leave-requests/%v/permanent%s", id, q), nil)
	assert.Equal(t, http.StatusNotFound, status, "purge needs trash first")

	status, _ = testutil.JSON(t, e.app, http.MethodDelete, fmt.Sprintf("/leave-requests/%v%s", id, q), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/leave-requests/%v%s", id, q), nil)
	assert.Equal(t, http.StatusNotFound, status)

	// a trashed request no longer blocks the same range
	status, _ = testutil.JSON(t, e.app, http.MethodPost, "/leave-requests/students", studentLeave("2024-01-10", "2024-01-10"))
	assert.Equal(t, http.StatusCreated, status)

	status, _ = testutil.JSON(t, e.app, http.MethodPost, fmt.Sprintf("/leave-requests/%v/restore%s", id, q), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = testutil.JSON(t, e.app, http.MethodDelete, fmt.Sprintf("/leave-requests/%v%s", id, q), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = testutil.JSON(t, e.app, http.MethodDelete, fmt.Sprintf("/leave-requests/%v/permanent%s", id, q), nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, testutil.FileExists(t, e.root, constants.FolderLeaveRequests, attachment))
}

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
	"schoolstaff_backend/internals/features/staff/duties/model"
	"schoolstaff_backend/internals/features/staff/duties/route"
	"schoolstaff_backend/internals/helpers/dbtime"
	"schoolstaff_backend/internals/testutil"
)

type dutyEnv struct {
	app  *fiber.App
	db   *gorm.DB
	root string
}

func newDutyEnv(t *testing.T) dutyEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	store, root := testutil.NewStore(t)
	app, api := testutil.NewApp()
	route.DutyRoutes(api, db, store)
	return dutyEnv{app: app, db: db, root: root}
}

func (e dutyEnv) duty(t *testing.T, title, deadline string, trash bool, staff ...uint) []model.DutyAssignmentModel {
	t.Helper()
	d := model.DutyModel{SchoolID: testutil.SchoolID, Title: title}
	if deadline != "" {
		dl, err := dbtime.ParseDate(deadline)
		require.NoError(t, err)
		d.Deadline = &dl
	}
	require.NoError(t, e.db.Create(&d).Error)
	if trash {
		require.NoError(t, e.db.Model(&d).Update("trash", true).Error)
	}
	out := make([]model.DutyAssignmentModel, 0, len(staff))
	for _, s := range staff {
		a := model.DutyAssignmentModel{DutyID: d.ID, StaffID: s, Status: constants.DutyPending}
		require.NoError(t, e.db.Create(&a).Error)
		out = append(out, a)
	}
	return out
}

func TestListDutiesForStaff(t *testing.T) {
	e := newDutyEnv(t)
	e.duty(t, "Exam hall invigilation", "2024-03-10", false, testutil.StaffID, testutil.TeacherID)
	e.duty(t, "Sports day volunteers", "2024-04-01", false, testutil.StaffID)
	e.duty(t, "Library audit", "2024-03-10", true, testutil.StaffID)
	e.duty(t, "Bus duty", "", false, testutil.TeacherID)

	status, body := testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties?staff_id=%d", testutil.StaffID), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body.Pagination()["total"])
	first := body.List()[0].(map[string]any)
	assert.Equal(t, "Exam hall invigilation", first["duty"].(map[string]any)["title"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties?staff_id=%d&q=SPORTS", testutil.StaffID), nil)
	assert.EqualValues(t, 1, body.Pagination()["total"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties?staff_id=%d&deadline=2024-03-10", testutil.StaffID), nil)
	assert.EqualValues(t, 1, body.Pagination()["total"])

	_, body = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties?staff_id=%d&page=2&limit=1", testutil.StaffID), nil)
	assert.Len(t, body.List(), 1)
	assert.EqualValues(t, 2, body.Pagination()["total_pages"])
	assert.Equal(t, false, body.Pagination()["has_next"])

	status, _ = testutil.JSON(t, e.app, http.MethodGet, "/duties", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetDutyIsScopedToStaff(t *testing.T) {
	e := newDutyEnv(t)
	rows := e.duty(t, "Exam hall invigilation", "2024-03-10", false, testutil.StaffID)

	status, body := testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties/%d?staff_id=%d", rows[0].ID, testutil.StaffID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, constants.DutyPending, body.Data()["status"])

	status, _ = testutil.JSON(t, e.app, http.MethodGet, fmt.Sprintf("/duties/%d?staff_id=%d", rows[0].ID, testutil.TeacherID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateDutyWithSolvedFile(t *testing.T) {
	e := newDutyEnv(t)
	rows := e.duty(t, "Exam hall invigilation", "2024-03-10", false, testutil.StaffID)
	path := fmt.Sprintf("/duties/%d", rows[0].ID)

	status, body := testutil.Multipart(t, e.app, http.MethodPatch, path, map[string]string{
		"staff_id": fmt.Sprint(testutil.StaffID),
		"status":   constants.DutyInProgress,
		"remarks":  "seating chart attached",
	}, testutil.Upload{Field: "solved_file", Filename: "seating.csv", Content: []byte("row,seat\n1,A1\n")})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, constants.DutyInProgress, body.Data()["status"])
	first := body.Data()["solved_file"].(string)
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderSolvedDuties, first))

	status, body = testutil.Multipart(t, e.app, http.MethodPatch, path, map[string]string{
		"staff_id": fmt.Sprint(testutil.StaffID),
		"status":   constants.DutyCompleted,
	}, testutil.Upload{Field: "solved_file", Filename: "seating-final.csv", Content: []byte("row,seat\n1,B1\n")})
	require.Equal(t, http.StatusOK, status, body)
	second := body.Data()["solved_file"].(string)
	assert.True(t, testutil.FileExists(t, e.root, constants.FolderSolvedDuties, second))
	assert.False(t, testutil.FileExists(t, e.root, constants.FolderSolvedDuties, first))
	assert.Equal(t, "seating chart attached", body.Data()["remarks"])

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"staff_id": testutil.StaffID, "status": "abandoned"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = testutil.JSON(t, e.app, http.MethodPatch, path, map[string]any{"staff_id": testutil.TeacherID, "status": constants.DutyCompleted})
	assert.Equal(t, http.StatusNotFound, status)
}

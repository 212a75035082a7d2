package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolstaff_backend/internals/constants"
	attendanceModel "schoolstaff_backend/internals/features/staff/attendances/model"
	attendanceService "schoolstaff_backend/internals/features/staff/attendances/service"
	"schoolstaff_backend/internals/features/staff/leave_requests/model"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
	"schoolstaff_backend/internals/testutil"
)

func setup(t *testing.T) (*gorm.DB, *LeaveDecisionService) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	return db, &LeaveDecisionService{DB: db, MaxRangeDays: DefaultMaxRangeDays}
}

func studentLeave(t *testing.T, db *gorm.DB, studentID uint, from, to string) *model.LeaveRequestModel {
	t.Helper()
	f, err := dbtime.ParseDate(from)
	require.NoError(t, err)
	e, err := dbtime.ParseDate(to)
	require.NoError(t, err)
	leave := &model.LeaveRequestModel{
		SchoolID:  testutil.SchoolID,
		UserID:    testutil.StaffID,
		StudentID: &studentID,
		Role:      constants.LeaveRoleStudent,
		FromDate:  f,
		ToDate:    e,
		LeaveType: "sick",
		Reason:    "fever",
		Status:    constants.LeavePending,
	}
	require.NoError(t, db.Create(leave).Error)
	return leave
}

type markRow struct {
	Date    string
	Status  string
	Remarks string
}

func leaveMarks(t *testing.T, db *gorm.DB, studentID uint) []markRow {
	t.Helper()
	var marks []attendanceModel.AttendanceMarkedModel
	require.NoError(t, db.Where("student_id = ?", studentID).Find(&marks).Error)

	out := make([]markRow, 0, len(marks))
	for _, m := range marks {
		var session attendanceModel.AttendanceModel
		require.NoError(t, db.First(&session, m.AttendanceID).Error)
		row := markRow{Date: dbtime.Format(session.Date), Status: m.Status}
		if m.Remarks != nil {
			row.Remarks = *m.Remarks
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func count(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestApproveStudentLeaveMarksEveryDay(t *testing.T) {
	db, svc := setup(t)
	leave := studentLeave(t, db, testutil.StudentID, "2024-01-10", "2024-01-12")

	remarks := "get well soon"
	got, err := svc.Decide(context.Background(), DecisionInput{
		LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved", AdminRemarks: &remarks,
	})
	require.NoError(t, err)
	assert.Equal(t, constants.LeaveApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, testutil.ApproverID, *got.ApprovedBy)

	assert.Equal(t, []markRow{
		{Date: "2024-01-10", Status: "leave", Remarks: "Leave approved"},
		{Date: "2024-01-11", Status: "leave", Remarks: "Leave approved"},
		{Date: "2024-01-12", Status: "leave", Remarks: "Leave approved"},
	}, leaveMarks(t, db, testutil.StudentID))

	var sessions []attendanceModel.AttendanceModel
	require.NoError(t, db.Find(&sessions).Error)
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, testutil.ClassID, s.ClassID)
		assert.Equal(t, testutil.SchoolID, s.SchoolID)
		assert.Equal(t, 1, s.Period)
		assert.Equal(t, testutil.ApproverID, s.TeacherID)
	}

	var stored model.LeaveRequestModel
	require.NoError(t, db.First(&stored, leave.ID).Error)
	assert.Equal(t, constants.LeaveApproved, stored.Status)
	require.NotNil(t, stored.AdminRemarks)
	assert.Equal(t, "get well soon", *stored.AdminRemarks)
}

func TestApproveIsIdempotent(t *testing.T) {
	db, svc := setup(t)
	leave := studentLeave(t, db, testutil.StudentID, "2024-03-01", "2024-03-05")
	in := DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved"}

	_, err := svc.Decide(context.Background(), in)
	require.NoError(t, err)
	sessions := count(t, db, &attendanceModel.AttendanceModel{})
	marks := count(t, db, &attendanceModel.AttendanceMarkedModel{})
	assert.EqualValues(t, 5, sessions)
	assert.EqualValues(t, 5, marks)

	_, err = svc.Decide(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, sessions, count(t, db, &attendanceModel.AttendanceModel{}))
	assert.Equal(t, marks, count(t, db, &attendanceModel.AttendanceMarkedModel{}))
}

func TestApproveOverwritesExistingMarksAndReusesSessions(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	day, _ := dbtime.ParseDate("2024-01-11")

	// the class was already marked present that morning by another teacher, then the session was trashed
	session, created, err := attendanceService.EnsureSession(ctx, db,
		attendanceService.Slot{SchoolID: testutil.SchoolID, ClassID: testutil.ClassID, Date: day, Period: 1},
		attendanceService.SessionDefaults{TeacherID: testutil.TeacherID})
	require.NoError(t, err)
	require.True(t, created)
	_, err = attendanceService.UpsertMarks(ctx, db, session.ID, []attendanceService.MarkInput{
		{StudentID: testutil.StudentID, Status: constants.AttendancePresent},
		{StudentID: testutil.StudentB, Status: constants.AttendancePresent},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(session).Update("trash", true).Error)

	leave := studentLeave(t, db, testutil.StudentID, "2024-01-10", "2024-01-12")
	_, err = svc.Decide(ctx, DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	require.NoError(t, err)

	marks := leaveMarks(t, db, testutil.StudentID)
	require.Len(t, marks, 3)
	for _, m := range marks {
		assert.Equal(t, "leave", m.Status)
	}

	var reused attendanceModel.AttendanceModel
	require.NoError(t, db.First(&reused, session.ID).Error)
	assert.False(t, reused.Trash)
	assert.Equal(t, testutil.TeacherID, reused.TeacherID, "existing session keeps its teacher")
	assert.EqualValues(t, 3, count(t, db, &attendanceModel.AttendanceModel{}))

	// the classmate's mark is untouched
	assert.Equal(t, []markRow{{Date: "2024-01-11", Status: "present"}}, leaveMarks(t, db, testutil.StudentB))
}

func TestRejectHasNoAttendanceSideEffects(t *testing.T) {
	db, svc := setup(t)
	leave := studentLeave(t, db, testutil.StudentID, "2024-01-10", "2024-01-12")

	got, err := svc.Decide(context.Background(), DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "Rejected"})
	require.NoError(t, err)
	assert.Equal(t, constants.LeaveRejected, got.Status)
	assert.Zero(t, count(t, db, &attendanceModel.AttendanceModel{}))
	assert.Zero(t, count(t, db, &attendanceModel.AttendanceMarkedModel{}))
}

func TestApproveStaffLeaveSkipsAttendance(t *testing.T) {
	db, svc := setup(t)
	from, _ := dbtime.ParseDate("2024-05-01")
	to, _ := dbtime.ParseDate("2024-05-02")
	leave := &model.LeaveRequestModel{
		SchoolID: testutil.SchoolID, UserID: testutil.StaffID, Role: constants.LeaveRoleStaff,
		FromDate: from, ToDate: to, LeaveType: "casual", Reason: "family function",
	}
	require.NoError(t, db.Create(leave).Error)

	got, err := svc.Decide(context.Background(), DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, constants.LeaveApproved, got.Status)
	assert.Zero(t, count(t, db, &attendanceModel.AttendanceModel{}))
}

func TestDecideErrors(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	leave := studentLeave(t, db, testutil.StudentID, "2024-01-10", "2024-01-12")

	_, err := svc.Decide(ctx, DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "maybe"})
	assert.True(t, helper.IsKind(err, helper.KindInvalidArgument))

	_, err = svc.Decide(ctx, DecisionInput{LeaveID: leave.ID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindInvalidArgument))

	_, err = svc.Decide(ctx, DecisionInput{LeaveID: 9999, ApproverID: testutil.ApproverID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	require.NoError(t, db.Model(leave).Update("trash", true).Error)
	_, err = svc.Decide(ctx, DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestApproveRollsBackWhenStudentMissing(t *testing.T) {
	db, svc := setup(t)
	leave := studentLeave(t, db, testutil.StudentID, "2024-01-10", "2024-01-12")
	require.NoError(t, db.Exec("UPDATE students SET trash = ? WHERE id = ?", true, testutil.StudentID).Error)

	_, err := svc.Decide(context.Background(), DecisionInput{LeaveID: leave.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	var stored model.LeaveRequestModel
	require.NoError(t, db.First(&stored, leave.ID).Error)
	assert.Equal(t, constants.LeavePending, stored.Status)
	assert.Nil(t, stored.ApprovedBy)
	assert.Zero(t, count(t, db, &attendanceModel.AttendanceModel{}))
}

func TestApproveRejectsBadRanges(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	inverted := studentLeave(t, db, testutil.StudentID, "2024-01-12", "2024-01-10")
	_, err := svc.Decide(ctx, DecisionInput{LeaveID: inverted.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindInvalidArgument))

	svc.MaxRangeDays = 5
	long := studentLeave(t, db, testutil.StudentB, "2024-01-01", "2024-01-06")
	_, err = svc.Decide(ctx, DecisionInput{LeaveID: long.ID, ApproverID: testutil.ApproverID, Status: "approved"})
	assert.True(t, helper.IsKind(err, helper.KindInvalidArgument))
	assert.Zero(t, count(t, db, &attendanceModel.AttendanceModel{}))
}

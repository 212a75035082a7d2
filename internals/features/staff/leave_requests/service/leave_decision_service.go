package service

import (
	"context"
	"log"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolstaff_backend/internals/configs"
	"schoolstaff_backend/internals/constants"
	attendanceService "schoolstaff_backend/internals/features/staff/attendances/service"
	"schoolstaff_backend/internals/features/staff/leave_requests/model"
	mastersService "schoolstaff_backend/internals/features/staff/masters/service"
	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/helpers/dbtime"
)

const DefaultMaxRangeDays = 62

type DecisionInput struct {
	LeaveID      uint
	ApproverID   uint
	Status       string
	AdminRemarks *string
}

// LeaveDecisionService approves or rejects leave requests. Approving a student
// leave marks the student "leave" in period 1 of every day of the range.
type LeaveDecisionService struct {
	DB           *gorm.DB
	MaxRangeDays int
}

func NewLeaveDecisionService(db *gorm.DB) *LeaveDecisionService {
	return &LeaveDecisionService{
		DB:           db,
		MaxRangeDays: configs.GetEnvInt("LEAVE_MAX_RANGE_DAYS", DefaultMaxRangeDays),
	}
}

// CheckRange rejects inverted ranges and ranges longer than maxDays.
func CheckRange(leave *model.LeaveRequestModel, maxDays int) (int, error) {
	days := dbtime.DaysInRange(leave.FromDate, leave.ToDate)
	if days == 0 {
		return 0, helper.InvalidArgument("from_date %s is after to_date %s",
			dbtime.Format(leave.FromDate), dbtime.Format(leave.ToDate))
	}
	if maxDays > 0 && days > maxDays {
		return 0, helper.InvalidArgument("leave spans %d days, at most %d allowed", days, maxDays)
	}
	return days, nil
}

func (s *LeaveDecisionService) Decide(ctx context.Context, in DecisionInput) (*model.LeaveRequestModel, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != constants.LeaveApproved && status != constants.LeaveRejected {
		return nil, helper.InvalidArgument("status must be %q or %q", constants.LeaveApproved, constants.LeaveRejected)
	}
	if in.ApproverID == 0 {
		return nil, helper.InvalidArgument("approver user_id is required")
	}
	if in.AdminRemarks != nil && strings.TrimSpace(*in.AdminRemarks) == "" {
		in.AdminRemarks = nil
	}

	var leave model.LeaveRequestModel
	var marked int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(helper.ActiveOnly("")).
			First(&leave, in.LeaveID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.NotFound("leave request %d not found", in.LeaveID)
		}
		if err != nil {
			return errors.Wrap(err, "load leave request")
		}

		leave.Status = status
		leave.ApprovedBy = &in.ApproverID
		leave.AdminRemarks = in.AdminRemarks

		if status == constants.LeaveApproved && leave.IsStudentLeave() {
			n, err := s.markLeaveDays(ctx, tx, &leave, in.ApproverID)
			if err != nil {
				return err
			}
			marked = n
		}

		return errors.Wrap(
			tx.Model(&leave).
				Select("status", "approved_by", "admin_remarks", "updated_at").
				Updates(&leave).Error,
			"save leave decision")
	})
	if err != nil {
		if helper.KindOf(err) == helper.KindUnexpected {
			log.Printf("[LeaveDecision] leave=%d status=%s: %v", in.LeaveID, status, err)
		}
		return nil, err
	}

	log.Printf("[LeaveDecision] leave=%d status=%s approver=%d days_marked=%d", leave.ID, status, in.ApproverID, marked)
	return &leave, nil
}

// markLeaveDays runs inside the decision transaction.
func (s *LeaveDecisionService) markLeaveDays(ctx context.Context, tx *gorm.DB, leave *model.LeaveRequestModel, approverID uint) (int, error) {
	if _, err := CheckRange(leave, s.MaxRangeDays); err != nil {
		return 0, err
	}
	classID, err := mastersService.StudentClassID(ctx, tx, *leave.StudentID)
	if err != nil {
		return 0, err
	}

	remark := constants.LeaveApprovedRemark
	days := dbtime.EachDay(leave.FromDate, leave.ToDate)
	for _, day := range days {
		session, _, err := attendanceService.EnsureSession(ctx, tx,
			attendanceService.Slot{SchoolID: leave.SchoolID, ClassID: classID, Date: day, Period: constants.DefaultPeriod},
			attendanceService.SessionDefaults{TeacherID: approverID},
		)
		if err != nil {
			return 0, err
		}
		if _, err := attendanceService.UpsertMarks(ctx, tx, session.ID, []attendanceService.MarkInput{{
			StudentID: *leave.StudentID,
			Status:    constants.AttendanceLeave,
			Remarks:   &remark,
		}}); err != nil {
			return 0, err
		}
	}
	return len(days), nil
}

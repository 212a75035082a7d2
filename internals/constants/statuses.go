package constants

// Leave requests
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"

	LeaveRoleStaff   = "staff"
	LeaveRoleStudent = "student"
)

// Attendance marks
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
	AttendanceLate    = "late"

	LeaveApprovedRemark = "Leave approved"
	DefaultPeriod       = 1
)

// Homework assignments
const (
	HomeworkPending   = "pending"
	HomeworkSubmitted = "submitted"
	HomeworkCompleted = "completed"
)

// Duty assignments
const (
	DutyPending    = "pending"
	DutyInProgress = "in_progress"
	DutyCompleted  = "completed"
)

// Achievements
const (
	AchievementLevelClass = "class"

	PrizeFirst       = "1st prize"
	PrizeSecond      = "2nd prize"
	PrizeThird       = "3rd prize"
	PrizeParticipant = "participant"
	PrizeOther       = "other"
)

var StudentAchievementStatuses = []string{PrizeFirst, PrizeSecond, PrizeThird, PrizeParticipant, PrizeOther}

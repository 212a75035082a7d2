package model

import (
	"time"

	"gorm.io/datatypes"

	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

// LeaveRequestModel covers both staff leave (StudentID nil) and leave filed for a student.
type LeaveRequestModel struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	SchoolID     uint           `gorm:"not null;index:idx_leave_lookup,priority:1;column:school_id" json:"school_id"`
	UserID       uint           `gorm:"not null;index:idx_leave_lookup,priority:2;column:user_id" json:"user_id"`
	StudentID    *uint          `gorm:"index;column:student_id" json:"student_id,omitempty"`
	Role         string         `gorm:"size:20;not null;default:staff;column:role" json:"role"`
	FromDate     datatypes.Date `gorm:"not null;index:idx_leave_lookup,priority:3;column:from_date" json:"from_date"`
	ToDate       datatypes.Date `gorm:"not null;column:to_date" json:"to_date"`
	LeaveType    string         `gorm:"size:50;not null;column:leave_type" json:"leave_type"`
	Duration     *string        `gorm:"size:50;column:leave_duration" json:"leave_duration,omitempty"`
	Reason       string         `gorm:"type:text;not null;column:reason" json:"reason"`
	Attachment   *string        `gorm:"column:attachment" json:"attachment,omitempty"`
	Status       string         `gorm:"size:20;not null;default:pending;index;column:status" json:"status"`
	ApprovedBy   *uint          `gorm:"column:approved_by" json:"approved_by,omitempty"`
	AdminRemarks *string        `gorm:"type:text;column:admin_remarks" json:"admin_remarks,omitempty"`
	Trash        bool           `gorm:"not null;default:false;index;column:trash" json:"trash"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User    *mastersModel.UserModel    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Student *mastersModel.StudentModel `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (LeaveRequestModel) TableName() string { return "leave_requests" }

func (m *LeaveRequestModel) IsStudentLeave() bool { return m.StudentID != nil && *m.StudentID != 0 }

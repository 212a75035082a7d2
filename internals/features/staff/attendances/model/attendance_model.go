package model

import (
	"time"

	"gorm.io/datatypes"

	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

// AttendanceModel is one session: a class, a day, a period.
// uq_attendance_slot makes find-or-create atomic.
type AttendanceModel struct {
	ID        uint           `gorm:"primaryKey;column:id" json:"id"`
	SchoolID  uint           `gorm:"not null;uniqueIndex:uq_attendance_slot,priority:1;column:school_id" json:"school_id"`
	ClassID   uint           `gorm:"not null;uniqueIndex:uq_attendance_slot,priority:2;column:class_id" json:"class_id"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:uq_attendance_slot,priority:3;column:date" json:"date"`
	Period    int            `gorm:"not null;default:1;uniqueIndex:uq_attendance_slot,priority:4;column:period" json:"period"`
	TeacherID uint           `gorm:"not null;index;column:teacher_id" json:"teacher_id"`
	SubjectID *uint          `gorm:"index;column:subject_id" json:"subject_id,omitempty"`
	Trash     bool           `gorm:"not null;default:false;index;column:trash" json:"trash"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Marks []AttendanceMarkedModel  `gorm:"foreignKey:AttendanceID;constraint:OnDelete:CASCADE" json:"attendance_marked,omitempty"`
	Class *mastersModel.ClassModel `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

func (AttendanceModel) TableName() string { return "attendances" }

type AttendanceMarkedModel struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	AttendanceID uint      `gorm:"not null;uniqueIndex:uq_attendance_marked_student,priority:1;column:attendance_id" json:"attendance_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:uq_attendance_marked_student,priority:2;index;column:student_id" json:"student_id"`
	Status       string    `gorm:"size:20;not null;column:status" json:"status"`
	Remarks      *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Student *mastersModel.StudentModel `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (AttendanceMarkedModel) TableName() string { return "attendance_marked" }

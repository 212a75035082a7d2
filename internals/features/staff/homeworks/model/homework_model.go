package model

import (
	"time"

	"gorm.io/datatypes"

	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

type HomeworkModel struct {
	ID          uint            `gorm:"primaryKey;column:id" json:"id"`
	SchoolID    uint            `gorm:"not null;index;column:school_id" json:"school_id"`
	TeacherID   uint            `gorm:"not null;index;column:teacher_id" json:"teacher_id"`
	ClassID     uint            `gorm:"not null;index;column:class_id" json:"class_id"`
	SubjectID   uint            `gorm:"not null;index;column:subject_id" json:"subject_id"`
	Description string          `gorm:"type:text;not null;column:description" json:"description"`
	DueDate     *datatypes.Date `gorm:"column:due_date" json:"due_date,omitempty"`
	File        *string         `gorm:"column:file" json:"file,omitempty"`
	Trash       bool            `gorm:"not null;default:false;index;column:trash" json:"trash"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Assignments []HomeworkAssignmentModel  `gorm:"foreignKey:HomeworkID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Class       *mastersModel.ClassModel   `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Subject     *mastersModel.SubjectModel `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

func (HomeworkModel) TableName() string { return "homeworks" }

type HomeworkAssignmentModel struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	HomeworkID uint      `gorm:"not null;uniqueIndex:uq_homework_assignment_student;column:homework_id" json:"homework_id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:uq_homework_assignment_student;column:student_id" json:"student_id"`
	Status     string    `gorm:"size:20;not null;default:pending;column:status" json:"status"`
	Points     *float64  `gorm:"type:decimal(6,2);column:points" json:"points,omitempty"`
	SolvedFile *string   `gorm:"column:solved_file" json:"solved_file,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Student *mastersModel.StudentModel `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (HomeworkAssignmentModel) TableName() string { return "homework_assignments" }

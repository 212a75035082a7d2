package model

import (
	"time"

	"gorm.io/datatypes"

	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

type InternalExamModel struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	SchoolID     uint           `gorm:"not null;index;column:school_id" json:"school_id"`
	ClassID      uint           `gorm:"not null;index;column:class_id" json:"class_id"`
	SubjectID    uint           `gorm:"not null;index;column:subject_id" json:"subject_id"`
	InternalName string         `gorm:"size:200;not null;column:internal_name" json:"internal_name"`
	MaxMarks     float64        `gorm:"type:decimal(6,2);not null;column:max_marks" json:"max_marks"`
	Date         datatypes.Date `gorm:"not null;index;column:date" json:"date"`
	Trash        bool           `gorm:"not null;default:false;index;column:trash" json:"trash"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Marks   []MarkModel                `gorm:"foreignKey:InternalID;constraint:OnDelete:CASCADE" json:"marks,omitempty"`
	School  *mastersModel.SchoolModel  `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Class   *mastersModel.ClassModel   `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Subject *mastersModel.SubjectModel `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

func (InternalExamModel) TableName() string { return "internal_exams" }

// MarkModel: one student's score in an internal exam.
type MarkModel struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	InternalID    uint      `gorm:"not null;uniqueIndex:uq_marks_exam_student;column:internal_id" json:"internal_id"`
	StudentID     uint      `gorm:"not null;uniqueIndex:uq_marks_exam_student;column:student_id" json:"student_id"`
	MarksObtained float64   `gorm:"type:decimal(6,2);not null;default:0;column:marks_obtained" json:"marks_obtained"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Student *mastersModel.StudentModel `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (MarkModel) TableName() string { return "marks" }

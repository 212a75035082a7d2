package model

import (
	"time"

	"gorm.io/datatypes"

	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

type AchievementModel struct {
	ID           uint           `gorm:"primaryKey;column:id" json:"id"`
	SchoolID     uint           `gorm:"not null;uniqueIndex:uq_achievement_title,priority:1;column:school_id" json:"school_id"`
	Title        string         `gorm:"size:200;not null;uniqueIndex:uq_achievement_title,priority:2;column:title" json:"title"`
	Description  *string        `gorm:"type:text;column:description" json:"description,omitempty"`
	Category     *string        `gorm:"size:100;column:category" json:"category,omitempty"`
	Level        string         `gorm:"size:30;not null;default:class;column:level" json:"level"`
	Date         datatypes.Date `gorm:"not null;uniqueIndex:uq_achievement_title,priority:3;column:date" json:"date"`
	AwardingBody *string        `gorm:"size:200;column:awarding_body" json:"awarding_body,omitempty"`
	RecordedBy   uint           `gorm:"not null;uniqueIndex:uq_achievement_title,priority:4;index;column:recorded_by" json:"recorded_by"`
	Trash        bool           `gorm:"not null;default:false;index;column:trash" json:"trash"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Students []StudentAchievementModel `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"students,omitempty"`
}

func (AchievementModel) TableName() string { return "achievements" }

type StudentAchievementModel struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	AchievementID uint      `gorm:"not null;index;column:achievement_id" json:"achievement_id"`
	StudentID     uint      `gorm:"not null;index;column:student_id" json:"student_id"`
	Status        string    `gorm:"size:30;not null;column:status" json:"status"`
	ProofDocument *string   `gorm:"column:proof_document" json:"proof_document,omitempty"`
	Remarks       *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Student *mastersModel.StudentModel `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (StudentAchievementModel) TableName() string { return "student_achievements" }

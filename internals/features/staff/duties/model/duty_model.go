package model

import (
	"time"

	"gorm.io/datatypes"
)

type DutyModel struct {
	ID          uint            `gorm:"primaryKey;column:id" json:"id"`
	SchoolID    uint            `gorm:"not null;index;column:school_id" json:"school_id"`
	Title       string          `gorm:"size:200;not null;column:title" json:"title"`
	Description *string         `gorm:"type:text;column:description" json:"description,omitempty"`
	Deadline    *datatypes.Date `gorm:"index;column:deadline" json:"deadline,omitempty"`
	File        *string         `gorm:"column:file" json:"file,omitempty"`
	Trash       bool            `gorm:"not null;default:false;column:trash" json:"trash"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DutyModel) TableName() string { return "duties" }

// DutyAssignmentModel: a duty handed to one staff member.
type DutyAssignmentModel struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	DutyID     uint      `gorm:"not null;uniqueIndex:uq_duty_assignment_staff;column:duty_id" json:"duty_id"`
	StaffID    uint      `gorm:"not null;uniqueIndex:uq_duty_assignment_staff;column:staff_id" json:"staff_id"`
	Status     string    `gorm:"size:20;not null;default:pending;column:status" json:"status"`
	Remarks    *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	SolvedFile *string   `gorm:"column:solved_file" json:"solved_file,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Duty *DutyModel `gorm:"foreignKey:DutyID;constraint:OnDelete:CASCADE" json:"duty,omitempty"`
}

func (DutyAssignmentModel) TableName() string { return "duty_assignments" }

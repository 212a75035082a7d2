package model

import "time"

/* =========================================================
   Reference tables the staff features read from.
   Managed by the school-admin side; seeded for development.
========================================================= */

type SchoolModel struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:200;not null;column:name" json:"name"`
	Timezone  string    `gorm:"size:64;column:timezone" json:"timezone,omitempty"`
	Trash     bool      `gorm:"not null;default:false;column:trash" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SchoolModel) TableName() string { return "schools" }

type ClassModel struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	SchoolID  uint      `gorm:"not null;index;column:school_id" json:"school_id"`
	Year      string    `gorm:"size:20;column:year" json:"year"`
	Division  string    `gorm:"size:20;column:division" json:"division"`
	Classname string    `gorm:"size:100;column:classname" json:"classname"`
	Trash     bool      `gorm:"not null;default:false;column:trash" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ClassModel) TableName() string { return "classes" }

type SubjectModel struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	SchoolID    uint      `gorm:"not null;index;column:school_id" json:"school_id"`
	SubjectName string    `gorm:"size:150;not null;column:subject_name" json:"subject_name"`
	Trash       bool      `gorm:"not null;default:false;column:trash" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

type StudentModel struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	SchoolID   uint      `gorm:"not null;index;column:school_id" json:"school_id"`
	ClassID    uint      `gorm:"not null;index;column:class_id" json:"class_id"`
	GuardianID *uint     `gorm:"index;column:guardian_id" json:"guardian_id,omitempty"`
	RegNo      string    `gorm:"size:50;column:reg_no" json:"reg_no"`
	FullName   string    `gorm:"size:200;not null;column:full_name" json:"full_name"`
	Image      *string   `gorm:"column:image" json:"image,omitempty"`
	Trash      bool      `gorm:"not null;default:false;column:trash" json:"-"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Class *ClassModel `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

type UserModel struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	SchoolID  uint      `gorm:"not null;index;column:school_id" json:"school_id"`
	Name      string    `gorm:"size:200;not null;column:name" json:"name"`
	Email     string    `gorm:"size:200;not null;uniqueIndex;column:email" json:"email"`
	Phone     *string   `gorm:"size:30;column:phone" json:"phone,omitempty"`
	Dp        *string   `gorm:"column:dp" json:"dp,omitempty"`
	Role      string    `gorm:"size:20;not null;column:role" json:"role"`
	Status    string    `gorm:"size:20;not null;default:active;column:status" json:"status"`
	Trash     bool      `gorm:"not null;default:false;column:trash" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

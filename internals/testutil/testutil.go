// Package testutil opens throwaway SQLite databases with the full schema.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "schoolstaff_backend/internals/databases"
	mastersModel "schoolstaff_backend/internals/features/staff/masters/model"
)

// Fixed ids seeded by SeedMasters.
const (
	SchoolID   uint = 1
	ClassID    uint = 5
	OtherClass uint = 6
	SubjectID  uint = 11
	ApproverID uint = 3
	StaffID    uint = 7
	TeacherID  uint = 8
	StudentID  uint = 42
	StudentB   uint = 43
	StudentC   uint = 44
)

// OpenDB gives each test its own in-memory database with foreign keys on.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache db alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// SeedMasters inserts one school with two classes, a subject, staff users and students.
func SeedMasters(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&mastersModel.SchoolModel{ID: SchoolID, Name: "Green Valley School"}).Error)
	require.NoError(t, db.Create([]mastersModel.ClassModel{
		{ID: ClassID, SchoolID: SchoolID, Year: "2024", Division: "A", Classname: "Grade 5"},
		{ID: OtherClass, SchoolID: SchoolID, Year: "2024", Division: "B", Classname: "Grade 6"},
	}).Error)
	require.NoError(t, db.Create(&mastersModel.SubjectModel{ID: SubjectID, SchoolID: SchoolID, SubjectName: "Mathematics"}).Error)
	require.NoError(t, db.Create([]mastersModel.UserModel{
		{ID: ApproverID, SchoolID: SchoolID, Name: "Principal", Email: "principal@example.com", Role: "admin"},
		{ID: StaffID, SchoolID: SchoolID, Name: "Asha Menon", Email: "asha@example.com", Role: "staff"},
		{ID: TeacherID, SchoolID: SchoolID, Name: "Ravi Kumar", Email: "ravi@example.com", Role: "teacher"},
	}).Error)
	require.NoError(t, db.Create([]mastersModel.StudentModel{
		{ID: StudentID, SchoolID: SchoolID, ClassID: ClassID, RegNo: "R-042", FullName: "Anu Joseph"},
		{ID: StudentB, SchoolID: SchoolID, ClassID: ClassID, RegNo: "R-043", FullName: "Bilal Khan"},
		{ID: StudentC, SchoolID: SchoolID, ClassID: OtherClass, RegNo: "R-044", FullName: "Chitra Nair"},
	}).Error)
}

package schools

import (
	"encoding/json"
	"log"
	"os"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolstaff_backend/internals/features/staff/masters/model"
)

// SchoolSeed is one school with its reference rows. Ids are explicit so the
// file can be re-run; existing ids are left alone.
type SchoolSeed struct {
	ID       uint                 `json:"id"`
	Name     string               `json:"name"`
	Timezone string               `json:"timezone"`
	Classes  []model.ClassModel   `json:"classes"`
	Subjects []model.SubjectModel `json:"subjects"`
	Users    []model.UserModel    `json:"users"`
	Students []model.StudentModel `json:"students"`
}

func LoadSchoolSeeds(filePath string) ([]SchoolSeed, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}
	var seeds []SchoolSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, errors.Wrap(err, "decode seed file")
	}
	return seeds, nil
}

// SeedSchoolsFromJSON inserts every school in filePath with its classes,
// subjects, users and students in one transaction.
func SeedSchoolsFromJSON(db *gorm.DB, filePath string) error {
	log.Println("[Seed] reading", filePath)
	seeds, err := LoadSchoolSeeds(filePath)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})
		for _, s := range seeds {
			school := model.SchoolModel{ID: s.ID, Name: s.Name, Timezone: s.Timezone}
			if err := skip.Create(&school).Error; err != nil {
				return errors.Wrapf(err, "seed school %d", s.ID)
			}
			for i := range s.Classes {
				s.Classes[i].SchoolID = s.ID
			}
			for i := range s.Subjects {
				s.Subjects[i].SchoolID = s.ID
			}
			for i := range s.Users {
				s.Users[i].SchoolID = s.ID
			}
			for i := range s.Students {
				s.Students[i].SchoolID = s.ID
			}
			if err := createAll(skip, s.Classes, s.Subjects, s.Users, s.Students); err != nil {
				return errors.Wrapf(err, "seed school %d", s.ID)
			}
			log.Printf("[Seed] school %d %q: %d classes, %d subjects, %d users, %d students",
				s.ID, s.Name, len(s.Classes), len(s.Subjects), len(s.Users), len(s.Students))
		}
		return nil
	})
}

func createAll(tx *gorm.DB, classes []model.ClassModel, subjects []model.SubjectModel, users []model.UserModel, students []model.StudentModel) error {
	if len(classes) > 0 {
		if err := tx.Create(&classes).Error; err != nil {
			return errors.Wrap(err, "classes")
		}
	}
	if len(subjects) > 0 {
		if err := tx.Create(&subjects).Error; err != nil {
			return errors.Wrap(err, "subjects")
		}
	}
	if len(users) > 0 {
		if err := tx.Create(&users).Error; err != nil {
			return errors.Wrap(err, "users")
		}
	}
	if len(students) > 0 {
		if err := tx.Create(&students).Error; err != nil {
			return errors.Wrap(err, "students")
		}
	}
	return nil
}

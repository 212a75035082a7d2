package seeds

import (
	"log"

	"gorm.io/gorm"

	"schoolstaff_backend/internals/configs"
	"schoolstaff_backend/internals/seeds/schools"
)

// RunAllSeeds loads SEED_FILE when set. Seeding is for development only and
// never aborts startup.
func RunAllSeeds(db *gorm.DB) {
	path := configs.GetEnv("SEED_FILE")
	if path == "" {
		return
	}
	if err := schools.SeedSchoolsFromJSON(db, path); err != nil {
		log.Printf("[Seed] %v", err)
		return
	}
	log.Println("[Seed] done")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/config"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/db"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Imports a locations JSON file into the database. Every entry goes through
// the validator; dropped entries are logged, not imported.
func main() {
	godotenv.Load(".env.local")

	file := flag.String("file", "", "path or URL of the locations JSON")
	replace := flag.Bool("replace", false, "delete existing locations first")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db.Connect()
	if err := db.EnsureSchema(db.DB, "spotter"); err != nil {
		log.Fatalf("Schema error: %v", err)
	}
	if err := db.DB.AutoMigrate(&locations.LocationRecord{}); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	loader := locations.NewLoader(*file, locations.NewValidator(cfg.ApprovedURLHost))
	records, err := loader.Load(context.Background())
	if err != nil {
		log.Fatalf("Load error: %v", err)
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if *replace {
			if err := tx.Where("1 = 1").Delete(&locations.LocationRecord{}).Error; err != nil {
				return err
			}
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
	})
	if err != nil {
		log.Fatalf("Import error: %v", err)
	}

	fmt.Printf("Imported %d locations from %s\n", len(records), *file)
}

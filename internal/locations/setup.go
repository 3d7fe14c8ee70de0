package locations

import (
	"context"
	"log"
	"sync"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/config"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/db"
)

var (
	defaultValidator *Validator

	workingMu sync.RWMutex
	working   []LocationRecord

	// OnReload is invoked with the fresh working set after every reload.
	// main wires this to the filter store so consumers stay in sync.
	OnReload func([]LocationRecord)
)

// Init migrates the schema and loads the working set: persisted rows win,
// otherwise the static locations file seeds both the database and memory.
func Init(cfg *config.Config) {
	defaultValidator = NewValidator(cfg.ApprovedURLHost)

	if err := db.EnsureSchema(db.DB, "spotter"); err != nil {
		log.Fatal("Failed to ensure schema spotter: ", err)
	}
	if err := db.DB.AutoMigrate(&LocationRecord{}); err != nil {
		log.Fatal("Failed to auto-migrate locations: ", err)
	}

	var count int64
	if err := db.DB.Model(&LocationRecord{}).Count(&count).Error; err != nil {
		log.Fatal("Failed to count locations: ", err)
	}

	if count > 0 {
		if err := ReloadFromDB(); err != nil {
			log.Fatal("Failed to load locations from database: ", err)
		}
		log.Printf("Loaded %d locations from database", len(WorkingSet()))
		return
	}

	if cfg.LocationsFile == "" {
		log.Println("No persisted locations and no locations file configured; starting empty")
		return
	}

	loader := NewLoader(cfg.LocationsFile, defaultValidator)
	records, err := loader.Load(context.Background())
	if err != nil {
		log.Fatal("Failed to load locations file: ", err)
	}
	if len(records) > 0 {
		if err := db.DB.Create(&records).Error; err != nil {
			log.Fatal("Failed to seed locations: ", err)
		}
	}
	setWorkingSet(records)
	log.Printf("Seeded %d locations from %s", len(records), cfg.LocationsFile)
}

// WorkingSet returns the current validated records. The slice is shared and
// read-only by convention; callers must not mutate it.
func WorkingSet() []LocationRecord {
	workingMu.RLock()
	defer workingMu.RUnlock()
	return working
}

func setWorkingSet(records []LocationRecord) {
	workingMu.Lock()
	working = records
	workingMu.Unlock()

	if OnReload != nil {
		OnReload(records)
	}
}

// ReloadFromDB replaces the working set with the persisted rows. Rows pass
// through the validator on the way in, same as any other source.
func ReloadFromDB() error {
	var rows []LocationRecord
	if err := db.DB.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return err
	}

	raw := make([]any, len(rows))
	for i, row := range rows {
		raw[i] = row.asRaw()
	}

	records, err := defaultValidator.Validate(raw)
	if err != nil {
		return err
	}
	setWorkingSet(records)
	return nil
}

package db

import (
	"fmt"

	"github.com/diewo77/viajante/internal/models"
	"gorm.io/gorm"
)

// Tables lists the imported models in import order.
func Tables() []any {
	return []any{&models.Booking{}, &models.Client{}, &models.Destination{}}
}

// Migrate creates the three tables if they are absent. Existing tables are
// left alone; imports replace them wholesale.
func Migrate(db *gorm.DB) error {
	for _, m := range Tables() {
		if db.Migrator().HasTable(m) {
			continue
		}
		if err := db.Migrator().CreateTable(m); err != nil {
			return fmt.Errorf("create table %T: %w", m, err)
		}
	}
	return nil
}

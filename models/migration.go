package models

import (
	"log"

	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) {
	err := db.AutoMigrate(
		&Tenant{},
		&VendorFile{},
		&VendorContract{}, &VendorContractLine{},
		&ReconciliationRun{}, &ReconciliationException{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

package models

import (
	"log"

	"github.com/gallagherpc/deals_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	// CapitalDeploymentEntry is intentionally absent: that table is
	// optional infrastructure provisioned out-of-band, and the analytics
	// engine must keep working when it does not exist.
	err := db.AutoMigrate(
		&Jurisdiction{},
		&Deal{}, &Parcel{}, &Financing{},
		&TriageRun{}, &RiskEntry{},
		&PipelineTransitionEvent{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

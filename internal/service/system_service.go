package service

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/database"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	features map[string]bool
}

// NewSystemService creates a new SystemService. features lists optional
// capabilities and whether they are active in this process.
func NewSystemService(db *sql.DB, features map[string]bool) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:       db,
		features: features,
	}
}

// VersionInfo describes the running build and the state of the schema.
type VersionInfo struct {
	AppVersion       string
	DbVersion        string
	Features         map[string]bool
	MigrationNeeded  bool
	MigrationMessage *string
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion compares the applied schema version with the newest embedded migration.
func (s *SystemService) CheckVersion() (VersionInfo, error) {
	current, err := database.Version(s.db)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := database.LatestVersion()
	if err != nil {
		return VersionInfo{}, err
	}

	info := VersionInfo{
		AppVersion: version.Version,
		DbVersion:  fmt.Sprintf("%d", current),
		Features:   s.features,
	}
	if current < latest {
		msg := fmt.Sprintf("schema is at version %d, migrations up to %d are pending", current, latest)
		info.MigrationNeeded = true
		info.MigrationMessage = &msg
	}
	return info, nil
}

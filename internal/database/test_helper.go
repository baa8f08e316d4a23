package database

import (
	"fmt"
	"testing"
	"time"

	"statement-ingest/internal/config"
	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

// CreateTestTransaction inserts a minimal persisted transaction for an owner.
func CreateTestTransaction(t *testing.T, db *DB, ownerID uuid.UUID, description string, amount decimal.Decimal, occurredAt time.Time) *models.Transaction {
	t.Helper()

	candidate := &models.TransactionCandidate{
		Date:        occurredAt,
		Amount:      amount,
		Description: description,
		Dialect:     models.DialectGeneric,
	}
	txn := models.FromCandidate(candidate, ownerID, nil)

	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return txn
}

// CreateTestImportJob inserts a running import job row for an owner.
func CreateTestImportJob(t *testing.T, db *DB, ownerID uuid.UUID, fileName string) *models.ImportJob {
	t.Helper()

	job := &models.ImportJob{
		OwnerID:  ownerID,
		FileName: fileName,
		FileKind: string(models.FileKindCSV),
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("failed to create test import job: %v", err)
	}

	return job
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
		"import_jobs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}

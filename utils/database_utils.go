// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Luismorlan/feedcast/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8
)

func isTempDB(dbName string) bool {
	return strings.HasPrefix(dbName, TestDBPrefix)
}

func randomTestDBName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return TestDBPrefix + id[:TestDBNameCharLength]
}

// HasTestDB is false when no Postgres is configured for tests.
func HasTestDB() bool {
	return os.Getenv("DB_HOST") != ""
}

// GetDBConnection get a connection to the database specified by env
func GetDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetDefaultDBConnection connect to database "postgres" to manage all dbs
func GetDefaultDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DEFAULT_DB_NAME"))
}

// GetCustomizedConnection connect to any db
func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	user, pass := os.Getenv("DB_USER"), os.Getenv("DB_PASS")
	if dbName == os.Getenv("DEFAULT_DB_NAME") {
		user, pass = os.Getenv("DEFAULT_DB_USER"), os.Getenv("DEFAULT_DB_PASS")
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), user, pass, dbName, os.Getenv("DB_PORT"))
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// CreateTempDB creates a migrated database for one test and drops it on
// cleanup. Tests are skipped when DB_HOST is unset.
//
// Databases survive a test timeout or Ctrl+C. Drop leftovers with prefix
// "testonlydb_" manually.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	if !HasTestDB() {
		t.Skip("DB_HOST not set")
	}
	db, err := GetDefaultDBConnection()
	if err != nil {
		t.Fatalf("cannot connect to DB: %v", err)
	}
	dbName := randomTestDBName()
	if err := db.Exec("CREATE DATABASE " + dbName).Error; err != nil {
		t.Fatalf("fail to create temp DB %s: %v", dbName, err)
	}
	newDB, err := GetCustomizedConnection(dbName)
	if err != nil {
		t.Fatalf("fail to connect to newly created DB %s: %v", dbName, err)
	}
	if err := DatabaseSetupAndMigration(newDB); err != nil {
		t.Fatalf("fail to migrate %s: %v", dbName, err)
	}
	t.Cleanup(func() {
		if err := dropTempDB(newDB, dbName); err != nil {
			t.Logf("fail to drop %s: %v", dbName, err)
		}
		// Close eagerly, otherwise tests may exceed the max connection limit.
		if conn, err := db.DB(); err == nil {
			conn.Close()
		}
	})

	return newDB, dbName
}

// dropTempDB drops a temp db. Dropping a missing DB is a no-op.
func dropTempDB(curDB *gorm.DB, dbName string) error {
	if !isTempDB(dbName) {
		return errors.Errorf("refuse to drop non-testing DB %s", dbName)
	}

	exists, err := IsDatabaseExist(dbName)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	// The current connection must be closed before the DB can be dropped.
	if sqlDB, err := curDB.DB(); err == nil {
		sqlDB.Close()
	}

	db, err := GetDefaultDBConnection()
	if err != nil {
		return err
	}
	defer func() {
		if conn, err := db.DB(); err == nil {
			conn.Close()
		}
	}()
	return db.Exec("DROP DATABASE " + dbName).Error
}

// DatabaseSetupAndMigration creates every table dispatch reads.
func DatabaseSetupAndMigration(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Account{},
		&model.Follow{},
		&model.Block{},
		&model.List{},
		&model.ListAccount{},
		&model.Tag{},
		&model.TagFollow{},
		&model.Status{},
		&model.Mention{},
		&model.Antenna{},
		&model.ConversationStatus{},
	)
	return errors.Wrap(err, "auto migrate")
}

// IsDatabaseExist returns true on DB exist, returns false on not exist or error
func IsDatabaseExist(dbName string) (bool, error) {
	db, err := GetDefaultDBConnection()
	if err != nil {
		return false, err
	}
	defer func() {
		if conn, err := db.DB(); err == nil {
			conn.Close()
		}
	}()

	var exists bool
	res := db.Raw("SELECT TRUE FROM pg_catalog.pg_database WHERE lower(datname) = lower(?) LIMIT 1", dbName).Scan(&exists)
	if res.Error != nil {
		return false, res.Error
	}
	return exists, nil
}

package database

import (
	"fmt"
	"time"

	"gmp-logbook/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open подключается к БД и прогоняет миграции.
// Postgres может подниматься дольше сервиса, поэтому пробуем несколько раз.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)

	switch driver {
	case DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite допускает одного писателя
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

	case DriverPostgres:
		const maxAttempts = 10
		for i := 1; i <= maxAttempts; i++ {
			log.Info().Int("attempt", i).Int("max", maxAttempts).Msg("connecting to postgres")

			db, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}

			log.Warn().Err(err).Msg("failed to connect to postgres")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", maxAttempts, err)
		}

	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.Room{},
		&models.Entry{},
		&models.EntryEdit{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

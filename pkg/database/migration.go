package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// MigrationLogger adapts ectologger to migrate's logger interface
type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

type MigrationConfig struct {
	MigrationFolderPath string
	Version             uint // 0 migrates to the latest version
	Force               int  // non-zero forces the schema version before migrating
	AutoRollback        bool // revert a dirty database to the previous version on failure
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

// resolveMigrationFolder tries the configured path as-is, then relative to
// the working directory.
func (ms *MigrationService) resolveMigrationFolder() string {
	folder := ms.config.MigrationFolderPath
	if _, err := os.Stat(folder); err == nil {
		return folder
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, folder)
}

func (ms *MigrationService) Migrate(databaseName string, databaseInstance database.Driver) error {
	folder := ms.resolveMigrationFolder()
	if _, err := os.Stat(folder); err != nil {
		return errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", folder))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, databaseInstance)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}

	m.Log = MigrationLogger{Logger: ms.logger}

	return ms.runMigration(m)
}

func (ms *MigrationService) runMigration(m *migrate.Migrate) error {
	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", ms.config.Force)
			return err
		}
	}

	previousVersion, _, versionErr := m.Version()
	if versionErr != nil {
		previousVersion = 0
	}

	var migrationErr error
	if ms.config.Version != 0 {
		migrationErr = m.Migrate(ms.config.Version)
	} else {
		migrationErr = m.Up()
	}

	return ms.handleMigrationError(m, migrationErr, previousVersion)
}

func (ms *MigrationService) handleMigrationError(m *migrate.Migrate, err error, previousVersion uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}

	if err == migrate.ErrNoChange {
		ms.logger.Info("No new migrations to apply")
		return nil
	}

	// The recorded schema version can be ahead of the migration folder
	// after a deploy rollback; pin the database to the latest version the
	// folder knows about.
	if strings.Contains(err.Error(), "no migration found for version") {
		latest, latestErr := latestVersionInFolder(ms.resolveMigrationFolder())
		if latestErr != nil {
			ms.logger.WithError(latestErr).Error("Failed to get latest migration version")
			return err
		}
		ms.logger.Warnf("No migration found for version %d. Forcing database to version %d", previousVersion, latest)
		if forceErr := m.Force(latest); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", latest)
			return forceErr
		}
		return nil
	}

	ms.logger.WithError(err).Errorf("Migration failed with error: %v", err)

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
		return err
	}

	if ms.config.AutoRollback && dirty {
		if previousVersion == 0 {
			previousVersion = version - 1
		}
		ms.logger.Warnf("Database is dirty at version %d. Reverting to version %d", version, previousVersion)
		if forceErr := m.Force(int(previousVersion)); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", previousVersion)
			return forceErr
		}
		// the startup still fails so the bad migration gets fixed first
		return err
	}

	ms.logger.WithError(err).Errorf("Failed to apply migrations. Database version is dirty=%t at version %d", dirty, version)
	return err
}

func latestVersionInFolder(folderPath string) (int, error) {
	files, err := os.ReadDir(folderPath)
	if err != nil {
		return 0, err
	}

	re := regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)
	latest := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := re.FindStringSubmatch(file.Name())
		if len(matches) < 2 {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, err
		}
		if version > latest {
			latest = version
		}
	}

	if latest == 0 {
		return 0, fmt.Errorf("no migration files found")
	}
	return latest, nil
}

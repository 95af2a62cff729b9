package migrations

import (
	"fmt"
	"time"

	authModels "pelada-api/packages/auth/models"
	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"unique;not null"`
	Batch     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type MigrationFunc func(*gorm.DB) error

type MigrationDefinition struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

type MigrationStatus struct {
	Name  string
	Batch int
	Ran   bool
}

type Migrator struct {
	db         *gorm.DB
	migrations []MigrationDefinition
}

func NewMigrator(db *gorm.DB) (*Migrator, error) {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	return &Migrator{
		db:         db,
		migrations: []MigrationDefinition{},
	}, nil
}

// NewDefaultMigrator registers every schema migration in dependency order.
func NewDefaultMigrator(db *gorm.DB) (*Migrator, error) {
	migrator, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	for _, migration := range GetAuthMigrations() {
		migrator.AddMigration(migration)
	}
	for _, migration := range GetCoreMigrations() {
		migrator.AddMigration(migration)
	}
	return migrator, nil
}

func (m *Migrator) AddMigration(migration MigrationDefinition) {
	m.migrations = append(m.migrations, migration)
}

func (m *Migrator) Migrate() error {
	fmt.Println("Running database migrations...")

	batch := m.getNextBatch()

	for _, migration := range m.migrations {
		if m.hasRun(migration.Name) {
			continue
		}

		fmt.Printf("Migrating: %s\n", migration.Name)

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration %s failed: %w", migration.Name, err)
			}
			record := Migration{Name: migration.Name, Batch: batch}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("Migrated: %s\n", migration.Name)
	}

	fmt.Println("Migration completed successfully")
	return nil
}

func (m *Migrator) Rollback(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	fmt.Printf("Rolling back %d batch(es)...\n", steps)

	batch := m.getLatestBatch()

	for i := 0; i < steps && batch > 0; i++ {
		var records []Migration
		if err := m.db.Where("batch = ?", batch).Order("id DESC").Find(&records).Error; err != nil {
			return err
		}

		for _, record := range records {
			migration := m.findMigration(record.Name)
			if migration == nil {
				return fmt.Errorf("migration definition not found: %s", record.Name)
			}
			if migration.Down == nil {
				return fmt.Errorf("rollback not defined for migration: %s", record.Name)
			}

			fmt.Printf("Rolling back: %s\n", record.Name)

			err := m.db.Transaction(func(tx *gorm.DB) error {
				if err := migration.Down(tx); err != nil {
					return fmt.Errorf("rollback failed for %s: %w", record.Name, err)
				}
				if err := tx.Delete(&record).Error; err != nil {
					return fmt.Errorf("failed to remove migration record %s: %w", record.Name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Rolled back: %s\n", record.Name)
		}

		batch--
	}

	fmt.Println("Rollback completed successfully")
	return nil
}

func (m *Migrator) Status() ([]MigrationStatus, error) {
	var records []Migration
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}
	batches := make(map[string]int, len(records))
	for _, record := range records {
		batches[record.Name] = record.Batch
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		batch, ran := batches[migration.Name]
		statuses = append(statuses, MigrationStatus{Name: migration.Name, Batch: batch, Ran: ran})
	}
	return statuses, nil
}

func (m *Migrator) hasRun(name string) bool {
	var count int64
	m.db.Model(&Migration{}).Where("name = ?", name).Count(&count)
	return count > 0
}

func (m *Migrator) getNextBatch() int {
	return m.getLatestBatch() + 1
}

func (m *Migrator) getLatestBatch() int {
	var migration Migration
	if err := m.db.Order("batch DESC").Limit(1).Find(&migration).Error; err != nil {
		return 0
	}
	return migration.Batch
}

func (m *Migrator) findMigration(name string) *MigrationDefinition {
	for i := range m.migrations {
		if m.migrations[i].Name == name {
			return &m.migrations[i]
		}
	}
	return nil
}

// AutoMigrateModels creates the schema straight from the gorm models. It is
// used for sqlite, where the SQL migrations do not apply.
func AutoMigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&authModels.User{},
		&authModels.RefreshToken{},
		&models.Player{},
		&models.Match{},
		&models.Team{},
		&models.Participation{},
		&models.Event{},
		&models.RatingHistory{},
	)
}

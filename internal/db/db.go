package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"agora/internal/models"
)

var DB *gorm.DB

// Init connects to Postgres, migrates the schema and seeds the groups.
func Init(dsn string, log *zap.Logger) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")

	if err := Migrate(DB); err != nil {
		return err
	}
	log.Info("database migration completed")

	return SeedGroups(DB, log)
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.ForumProfile{},
		&models.Section{},
		&models.Forum{},
		&models.Topic{},
		&models.Post{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedGroups creates the Admins and Moderators groups if missing.
func SeedGroups(db *gorm.DB, log *zap.Logger) error {
	for _, name := range []string{models.GroupAdmins, models.GroupModerators} {
		g := models.Group{Name: name}
		res := db.Where(models.Group{Name: name}).FirstOrCreate(&g)
		if res.Error != nil {
			return fmt.Errorf("failed to seed group %s: %w", name, res.Error)
		}
		if res.RowsAffected > 0 {
			log.Info("seeded group", zap.String("group", name))
		}
	}
	return nil
}

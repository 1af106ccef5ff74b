package database

import (
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate creates or updates the schema for every persisted entity. The
// Enrollment composite unique index is part of the retry/enrollment
// consistency guarantees, so migration must run before the services.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Module{},
		&model.Submaterial{},
		&model.Enrollment{},
		&model.Quiz{},
		&model.Question{},
		&model.Choice{},
		&model.QuizAttempt{},
	)
}

package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vibely/src/core/config"
	"vibely/src/core/models"
)

var DB *gorm.DB

func ConnectDB() {
	host := config.Config("DB_HOST")
	port := config.Config("DB_PORT")
	user := config.Config("DB_USER")
	password := config.Config("DB_PASSWORD")
	dbname := config.Config("DB_NAME")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Error migrating database schema: %v", err)
	}

	fmt.Println("Database successfully connected!")
}

// Migrate creates or updates the schema for every domain entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Post{},
		&models.Like{},
		&models.Bookmark{},
		&models.Comment{},
		&models.Notification{},
		&models.Story{},
		&models.StoryView{},
		&models.Message{},
	)
}

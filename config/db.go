package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// ResolveMySQLDSN prefers MYSQL_URL / DATABASE_URL and falls back to the DB_* variables.
func ResolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hiking_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// OpenDatabase opens a gorm connection for driver "mysql" or "sqlite". SQLite is limited to a
// single connection: it serialises writers anyway and an in-memory database lives per
// connection.
func OpenDatabase(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	cfg := &gorm.Config{Logger: newLogger, TranslateError: true}

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot get raw sql.DB: %w", err)
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// Migrate creates or updates every table, parents before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Tour{},
		&models.TourDate{},
		&models.Booking{},
		&models.Review{},
		&models.PostCategory{},
		&models.Post{},
	)
}

// ConnectDatabase opens the configured store, migrates it and seeds reference data.
func ConnectDatabase(s Settings) error {
	dsn := s.SQLitePath
	if s.DBDriver == "mysql" {
		var err error
		if dsn, err = ResolveMySQLDSN(); err != nil {
			return err
		}
	}

	level := logger.Info
	if s.GinMode == "release" {
		level = logger.Warn
	}

	db, err := OpenDatabase(s.DBDriver, dsn, level)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	if s.SeedData {
		SeedDatabase(db)
	}
	return nil
}

// SeedDatabase inserts the default staff account and reference data on an empty store.
func SeedDatabase(db *gorm.DB) {
	// ---------------- Staff ----------------
	var staffCount int64
	db.Model(&models.User{}).Where("is_staff = ?", true).Count(&staffCount)
	if staffCount == 0 {
		password := utils.EnvOrDefault("ADMIN_PASSWORD", "admin123")
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default staff password: %v", err)
		} else {
			admin := models.User{
				Username:  utils.EnvOrDefault("ADMIN_USERNAME", "admin"),
				Email:     utils.EnvOrDefault("ADMIN_EMAIL", "admin@tours.local"),
				FirstName: "Admin",
				Password:  string(hash),
				IsStaff:   true,
			}
			if err := db.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default staff user: %v", err)
			} else {
				log.Println("Default staff user seeded")
			}
		}
	}

	// ---------------- Tour categories ----------------
	var catCount int64
	db.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		categories := []models.Category{
			{Name: "Day Hikes", Description: "Single-day guided walks"},
			{Name: "Multi-day Treks", Description: "Hut-to-hut and camping treks"},
			{Name: "Alpine", Description: "Glacier and high mountain routes"},
		}
		if err := db.Create(&categories).Error; err != nil {
			log.Printf("warning: failed to seed tour categories: %v", err)
		} else {
			log.Println("Tour categories seeded")
		}
	}

	// ---------------- Locations ----------------
	var locCount int64
	db.Model(&models.Location{}).Count(&locCount)
	if locCount == 0 {
		locations := []models.Location{
			{Name: "Dolomites", Country: "Italy", State: "Trentino", City: "Cortina d'Ampezzo"},
			{Name: "Patagonia", Country: "Chile", State: "Magallanes", City: "Puerto Natales"},
		}
		if err := db.Create(&locations).Error; err != nil {
			log.Printf("warning: failed to seed locations: %v", err)
		} else {
			log.Println("Locations seeded")
		}
	}

	// ---------------- Blog categories ----------------
	var postCatCount int64
	db.Model(&models.PostCategory{}).Count(&postCatCount)
	if postCatCount == 0 {
		postCategories := []models.PostCategory{
			{Name: "Trip Reports", Slug: "trip-reports"},
			{Name: "Gear", Slug: "gear"},
			{Name: "News", Slug: "news"},
		}
		if err := db.Create(&postCategories).Error; err != nil {
			log.Printf("warning: failed to seed blog categories: %v", err)
		} else {
			log.Println("Blog categories seeded")
		}
	}
}

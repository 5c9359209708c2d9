package database

import (
	"fmt"

	"github.com/selimcan/tasktracker/internal/config"
	"github.com/selimcan/tasktracker/internal/models"
	"github.com/selimcan/tasktracker/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.DBDriver))
	return nil
}

func openDialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func Migrate() error {
	logger.Log.Info("Running database migrations")
	err := DB.AutoMigrate(
		&models.UserType{},
		&models.User{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Log.Info("Database migrations completed")
	return nil
}

// SeedRoles creates the role catalog if it does not exist yet. Idempotent.
func SeedRoles(db *gorm.DB) error {
	roles := []models.UserType{
		{Code: models.RoleUser, Name: "User", Description: "Regular user with access to own records only"},
		{Code: models.RoleStaff, Name: "Staff", Description: "Staff member with global data access"},
		{Code: models.RoleAdmin, Name: "Admin", Description: "Administrator with global data access"},
		{Code: models.RoleSuperAdmin, Name: "Super Admin", Description: "Administrator with full privileges"},
	}

	for _, role := range roles {
		var existing models.UserType
		err := db.Where(models.UserType{Code: role.Code}).
			Attrs(models.UserType{Name: role.Name, Description: role.Description}).
			FirstOrCreate(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Code, err)
		}
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}

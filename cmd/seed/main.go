package main

import (
	"log"
	"os"

	"github.com/selimcan/tasktracker/internal/config"
	"github.com/selimcan/tasktracker/internal/database"
	"github.com/selimcan/tasktracker/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the role catalog and creates the first super admin account from
// ADMIN_EMAIL / ADMIN_PASSWORD. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedRoles(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	log.Println("Role catalog seeded")

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	db := database.GetDB()

	var existing models.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Println("Admin user already exists:", existing.Email)
		return
	}

	var role models.UserType
	if err := db.Where("code = ?", models.RoleSuperAdmin).First(&role).Error; err != nil {
		log.Fatalf("Failed to load super_admin role: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		UserTypeID:   &role.ID,
		UserType:     &role,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Println("Super admin created:", admin.Email)
}

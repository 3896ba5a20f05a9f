package bootstrap

import (
	"log"

	"anoa.com/educonnect/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Course{},
		&entity.Enrollment{},
		&entity.Assignment{},
		&entity.Submission{},
		&entity.LectureMaterial{},
		&entity.Notification{},
		&entity.Announcement{},
		&entity.TechIssue{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Administrator"},
		{Name: entity.RoleTeacher, Description: "Teacher"},
		{Name: entity.RoleStudent, Description: "Student"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     stringPtr("admin"),
		Name:         "Administrator",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Username: admin")
	log.Println("   Password: admin123")

	return nil
}

func SeedCourses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	courses := []entity.Course{
		{Name: "Accounting", Description: "Introduction to Accounting"},
		{Name: "Mathematics", Description: "Basic Mathematics"},
		{Name: "Physics", Description: "Fundamentals of Physics"},
	}
	if err := db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d default courses", len(courses))
	return nil
}

func stringPtr(s string) *string {
	return &s
}

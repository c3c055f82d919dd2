package config

import (
	"errors"
	"log"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders. Demo data is only written when asked for.
func (s *Seeder) Run(withDemo bool) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if withDemo {
		if err := s.seedDemoCatalog(); err != nil {
			return err
		}
		if err := s.seedDemoBorrowers(); err != nil {
			return err
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the first admin of AdminSchool if that school has none
func (s *Seeder) seedAdminUser() error {
	if s.cfg.AdminPassword == "" {
		log.Println("⚠️ ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return domain.ErrWeakPassword
	}

	var count int64
	s.db.Model(&models.User{}).
		Where("school_name = ? AND role = ?", s.cfg.AdminSchool, string(domain.RoleAdmin)).
		Count(&count)
	if count > 0 {
		return nil
	}

	var existing models.User
	err := s.db.Where("username = ?", s.cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return errors.New("username " + s.cfg.AdminUsername + " is taken by another school")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		SchoolName: s.cfg.AdminSchool,
		Username:   s.cfg.AdminUsername,
		Email:      s.cfg.AdminEmail,
		Password:   hashedPassword,
		Role:       string(domain.RoleAdmin),
		IsActive:   true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s (%s)", admin.Username, admin.SchoolName)
	return nil
}

func (s *Seeder) seedDemoCatalog() error {
	books := []models.Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227", Category: "Fiction", Quantity: 4},
		{Title: "A Brief History of Time", Author: "Stephen Hawking", ISBN: "9780553380163", Category: "Science", Quantity: 2},
		{Title: "Charlotte's Web", Author: "E.B. White", ISBN: "9780064400558", Category: "Fiction", Quantity: 3},
		{Title: "The Elements of Style", Author: "Strunk and White", ISBN: "9780205309023", Category: "Reference", Quantity: 1},
		{Title: "Cosmos", Author: "Carl Sagan", ISBN: "9780345539434", Category: "Science", Quantity: 2},
	}

	for _, b := range books {
		var existing models.Book
		err := s.db.Where("school_name = ? AND isbn = ?", s.cfg.AdminSchool, b.ISBN).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		b.SchoolName = s.cfg.AdminSchool
		b.AvailableQuantity = b.Quantity
		b.Status = string(domain.BookAvailable)
		if err := s.db.Create(&b).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded book: %s", b.Title)
	}

	return nil
}

func (s *Seeder) seedDemoBorrowers() error {
	var count int64
	s.db.Model(&models.Student{}).Where("school_name = ?", s.cfg.AdminSchool).Count(&count)
	if count == 0 {
		students := []models.Student{
			{SchoolName: s.cfg.AdminSchool, Name: "Maya Patel", RollNumber: "7A-01", ClassName: "7A"},
			{SchoolName: s.cfg.AdminSchool, Name: "Liam Chen", RollNumber: "7A-02", ClassName: "7A"},
			{SchoolName: s.cfg.AdminSchool, Name: "Sofia Rossi", RollNumber: "8B-11", ClassName: "8B"},
		}
		if err := s.db.Create(&students).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded %d students", len(students))
	}

	s.db.Model(&models.Teacher{}).Where("school_name = ?", s.cfg.AdminSchool).Count(&count)
	if count == 0 {
		teachers := []models.Teacher{
			{SchoolName: s.cfg.AdminSchool, Name: "Grace Okafor", Email: "g.okafor@example.edu", Subject: "Physics"},
			{SchoolName: s.cfg.AdminSchool, Name: "Tom Becker", Email: "t.becker@example.edu", Subject: "English"},
		}
		if err := s.db.Create(&teachers).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded %d teachers", len(teachers))
	}

	return nil
}

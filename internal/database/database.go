package database

import (
	"errors"

	"bithra/config"
	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.ReferralCode{},
		&models.Referral{},
		&models.Project{},
		&models.ProjectPackage{},
		&models.Backing{},
		&models.Negotiation{},
		&models.NegotiationMessage{},
		&models.EarlyBirdRegistration{},
		&models.ForumCategory{},
		&models.ForumPost{},
		&models.ForumReply{},
		&models.ContentReport{},
		&models.Valuation{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the platform admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	err := db.Where("role = ?", domain.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        email,
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		FullName:     "مدير المنصة",
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	logger.Component("database").WithField("email", email).Info("seeded admin account")
	return nil
}

// DefaultForumCategories are created on first start.
var DefaultForumCategories = []models.ForumCategory{
	{Slug: "valuation", Name: "التقييم العقاري", Description: "أسئلة ونقاشات حول تقييم العقارات", Position: 1},
	{Slug: "crowdfunding", Name: "التمويل الجماعي", Description: "مشاريع بذرة وتجارب الداعمين", Position: 2},
	{Slug: "market", Name: "السوق العقاري", Description: "أخبار وتحليلات السوق السعودي", Position: 3},
	{Slug: "regulations", Name: "الأنظمة والتشريعات", Description: "الأنظمة العقارية وإجراءات الإفراغ", Position: 4},
	{Slug: "general", Name: "نقاش عام", Description: "كل ما لا يندرج تحت الأقسام الأخرى", Position: 5},
}

// SeedForumCategories inserts default categories that don't already exist.
func SeedForumCategories(db *gorm.DB) error {
	for _, c := range DefaultForumCategories {
		var count int64
		db.Model(&models.ForumCategory{}).Where("slug = ?", c.Slug).Count(&count)
		if count > 0 {
			continue
		}
		cat := c
		if err := db.Create(&cat).Error; err != nil {
			return err
		}
	}
	return nil
}

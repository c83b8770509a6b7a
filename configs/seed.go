package configs

import (
	"strings"

	"restaurant/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func SeedAdmin(db *gorm.DB, cfg *Config, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		log.Info("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists", zap.String("email", email))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		Name:     "Admin",
		Email:    email,
		Password: string(hash),
		Role:     entity.RoleAdmin,
	}
	return db.Create(&admin).Error
}

type seedItem struct {
	name, description, price, ingredients, allergens string
	prep                                             int
}

var seedMenu = []struct {
	category entity.Category
	items    []seedItem
}{
	{
		category: entity.Category{Name: "Appetizers", Description: "Small plates to start", IsActive: true},
		items: []seedItem{
			{"Garlic Bread", "Toasted baguette with garlic butter", "5.99", "bread, butter, garlic, parsley", "gluten, dairy", 8},
			{"Caesar Salad", "Romaine, parmesan, croutons", "8.49", "romaine, parmesan, croutons, caesar dressing", "gluten, dairy, egg, fish", 10},
		},
	},
	{
		category: entity.Category{Name: "Mains", Description: "Hearty dishes", IsActive: true},
		items: []seedItem{
			{"Margherita Pizza", "Tomato, mozzarella, basil", "12.99", "dough, tomato, mozzarella, basil", "gluten, dairy", 18},
			{"Classic Burger", "Beef patty, cheddar, pickles", "13.49", "beef, cheddar, bun, pickles, onion", "gluten, dairy", 15},
			{"Grilled Salmon", "With lemon butter and greens", "18.99", "salmon, butter, lemon, greens", "fish, dairy", 20},
		},
	},
	{
		category: entity.Category{Name: "Desserts", Description: "Something sweet", IsActive: true},
		items: []seedItem{
			{"Tiramisu", "Espresso-soaked ladyfingers", "6.99", "mascarpone, espresso, ladyfingers, cocoa", "gluten, dairy, egg", 5},
		},
	},
	{
		category: entity.Category{Name: "Drinks", Description: "Cold and hot drinks", IsActive: true},
		items: []seedItem{
			{"Lemonade", "Fresh squeezed", "3.49", "lemon, sugar, water", "", 3},
			{"Espresso", "Double shot", "2.99", "coffee", "", 2},
		},
	},
}

// SeedMenu inserts the default categories and menu items when missing.
func SeedMenu(db *gorm.DB, log *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, group := range seedMenu {
			cat := group.category
			if err := tx.Where(entity.Category{Name: cat.Name}).FirstOrCreate(&cat).Error; err != nil {
				return err
			}
			for _, it := range group.items {
				mi := entity.MenuItem{
					Name:            it.name,
					Description:     it.description,
					Price:           decimal.RequireFromString(it.price),
					IsAvailable:     true,
					PreparationTime: it.prep,
					Ingredients:     it.ingredients,
					Allergens:       it.allergens,
					CategoryID:      cat.ID,
				}
				if err := tx.Where(entity.MenuItem{Name: mi.Name, CategoryID: cat.ID}).
					Attrs(mi).FirstOrCreate(&mi).Error; err != nil {
					return err
				}
			}
		}
		log.Info("menu seeded", zap.Int("categories", len(seedMenu)))
		return nil
	})
}

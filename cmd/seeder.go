package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	productModel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/product"
	supplierModel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/supplier"
	userModel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	seedForce    bool
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with one user per role, a few suppliers and their products for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := initLogger(cfg)

		db, err := openDatabase(cfg.Database, false)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if seedForce {
				if err := tx.Exec("TRUNCATE audit_logs, purchase_order_items, purchase_orders, products, suppliers, users RESTART IDENTITY CASCADE").Error; err != nil {
					return fmt.Errorf("truncate: %w", err)
				}
				lg.Warn("existing data truncated")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			if err := seedUsers(tx, string(hash)); err != nil {
				return err
			}
			suppliers, err := seedSuppliers(tx)
			if err != nil {
				return err
			}
			if err := seedProducts(tx, suppliers); err != nil {
				return err
			}

			lg.Info("seed completed", "users", 3, "suppliers", len(suppliers))
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "truncate all tables before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for every seeded user")
}

func seedUsers(tx *gorm.DB, hash string) error {
	users := []userModel.User{
		{Name: "Admin", Email: "admin@procurement.local", Role: access.RoleAdmin.String()},
		{Name: "Procurement Officer", Email: "procurement@procurement.local", Role: access.RoleProcurement.String()},
		{Name: "Auditor", Email: "auditor@procurement.local", Role: access.RoleAuditor.String()},
	}

	for _, u := range users {
		var existing userModel.User
		err := tx.Where("email = ?", u.Email).First(&existing).Error
		if err == nil {
			fmt.Println("user already exists:", u.Email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup user %s: %w", u.Email, err)
		}

		u.PasswordHash = hash
		u.IsActive = true
		if err := tx.Create(&u).Error; err != nil {
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
		fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
	}
	return nil
}

func seedSuppliers(tx *gorm.DB) (map[string]int64, error) {
	suppliers := []supplierModel.Supplier{
		{CompanyName: "Acme Office Supply", ContactPerson: "Jane Doe", Email: "sales@acme.example", Phone: "+1-555-0100", City: "Springfield", Country: "US", PaymentTerms: "NET_30", Status: "ACTIVE"},
		{CompanyName: "Globex Industrial", ContactPerson: "Hank Scorpio", Email: "orders@globex.example", Phone: "+1-555-0199", City: "Cypress Creek", Country: "US", PaymentTerms: "NET_60", Status: "ACTIVE"},
		{CompanyName: "Initech Hardware", ContactPerson: "Bill Lumbergh", Email: "supply@initech.example", City: "Austin", Country: "US", PaymentTerms: "NET_15", Status: "INACTIVE"},
	}

	ids := make(map[string]int64, len(suppliers))
	for _, s := range suppliers {
		var existing supplierModel.Supplier
		err := tx.Where("company_name = ?", s.CompanyName).First(&existing).Error
		if err == nil {
			ids[s.CompanyName] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup supplier %s: %w", s.CompanyName, err)
		}

		if err := tx.Create(&s).Error; err != nil {
			return nil, fmt.Errorf("insert supplier %s: %w", s.CompanyName, err)
		}
		ids[s.CompanyName] = s.ID
		fmt.Println("Seeded supplier:", s.CompanyName)
	}
	return ids, nil
}

func seedProducts(tx *gorm.DB, suppliers map[string]int64) error {
	products := []struct {
		supplier string
		row      productModel.Product
	}{
		{"Acme Office Supply", productModel.Product{SKU: "PAP-A4-500", Name: "A4 Copy Paper (500 sheets)", Category: "Office Supplies", Quantity: 120, UnitPrice: decimal.RequireFromString("4.99"), ReorderThreshold: 50}},
		{"Acme Office Supply", productModel.Product{SKU: "PEN-BLU-12", Name: "Blue Ballpoint Pens (12 pack)", Category: "Office Supplies", Quantity: 8, UnitPrice: decimal.RequireFromString("3.50"), ReorderThreshold: 20}},
		{"Globex Industrial", productModel.Product{SKU: "GLV-NIT-L", Name: "Nitrile Gloves (L)", Category: "Safety", Quantity: 15, UnitPrice: decimal.RequireFromString("12.00"), ReorderThreshold: 15}},
		{"Globex Industrial", productModel.Product{SKU: "DRL-18V", Name: "18V Cordless Drill", Category: "Tools", Quantity: 4, UnitPrice: decimal.RequireFromString("89.90"), ReorderThreshold: 2}},
		{"Initech Hardware", productModel.Product{SKU: "STP-RED", Name: "Red Stapler", Category: "Office Supplies", Quantity: 0, UnitPrice: decimal.RequireFromString("15.00"), ReorderThreshold: 5}},
	}

	for _, p := range products {
		supplierID, ok := suppliers[p.supplier]
		if !ok {
			return fmt.Errorf("supplier %s was not seeded", p.supplier)
		}

		var count int64
		if err := tx.Model(&productModel.Product{}).Where("sku = ?", p.row.SKU).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup product %s: %w", p.row.SKU, err)
		}
		if count > 0 {
			continue
		}

		row := p.row
		row.SupplierID = supplierID
		row.Status = "ACTIVE"
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert product %s: %w", row.SKU, err)
		}
		fmt.Println("Seeded product:", row.SKU)
	}
	return nil
}

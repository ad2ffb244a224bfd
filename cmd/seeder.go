package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"employee_permissions", "allocations", "transfers", "maintenance_records", "maintenance_schedules", "tickets", "assets"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		employees := []struct {
			Email      string
			Name       string
			Department string
		}{
			{"sari@mail.com", "Sari", "Engineering"},
			{"budi@mail.com", "Budi Admin", "IT Operations"},
		}

		for _, e := range employees {
			var exists int
			if err := db.Raw("SELECT 1 FROM employees WHERE email = ?", e.Email).Row().Scan(&exists); err == nil {
				fmt.Printf("employee %s already exists; skipping insert\n", e.Email)
				continue
			}
			if err := db.Exec("INSERT INTO employees (email, name, password_hash, department, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				e.Email, e.Name, string(hash), e.Department).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", e.Email, err)
			}
			fmt.Println("Seeded employee:", e.Email)
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{auth.PermAdmin, "full administrator"},
			{auth.PermManageAssets, "Can create, edit and retire assets"},
			{auth.PermAllocateAssets, "Can allocate and take back assets"},
			{auth.PermManageMaintenance, "Can run the maintenance calendar"},
			{auth.PermManageTickets, "Can work support tickets"},
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		var adminID int64
		if err := db.Raw("SELECT id FROM employees WHERE email = ?", "budi@mail.com").Row().Scan(&adminID); err != nil {
			log.Fatalf("failed to lookup admin employee id: %v", err)
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found after insert %s: %v", p.Name, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM employee_permissions WHERE employee_id = ? AND permission_id = ?", adminID, pid).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO employee_permissions (employee_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", adminID, pid).Error; err != nil {
				log.Fatalf("failed to grant permission %s to admin: %v", p.Name, err)
			}
		}

		fmt.Println("Granted all permissions to admin employee: budi@mail.com")

		assets := []struct {
			Tag      string
			Name     string
			Category string
		}{
			{"LT-0001", "ThinkPad X1 Carbon", "laptop"},
			{"LT-0002", "MacBook Pro 14", "laptop"},
			{"MN-0001", "Dell U2723QE", "monitor"},
			{"PH-0001", "Pixel 8", "phone"},
		}

		for _, a := range assets {
			var exists int
			if err := db.Raw("SELECT 1 FROM assets WHERE asset_tag = ?", a.Tag).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO assets (asset_tag, name, category, status, created_at, updated_at) VALUES (?, ?, ?, ?, now(), now())",
				a.Tag, a.Name, a.Category, asset.StatusAvailable).Error; err != nil {
				log.Fatalf("failed to insert asset %s: %v", a.Tag, err)
			}
			fmt.Printf("Seeded asset: %s (%s)\n", a.Tag, a.Name)
		}

		fmt.Println("Sample data seeded successfully")
	},
}

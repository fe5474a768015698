package main

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"brokercrm/internal/database"
	"brokercrm/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "brokercrm.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (children first to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM audit_logs")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM documents")
	db.Exec("DELETE FROM notes")
	db.Exec("DELETE FROM tasks")
	db.Exec("DELETE FROM financial_records")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM policies")
	db.Exec("DELETE FROM quotes")
	db.Exec("DELETE FROM deals")
	db.Exec("DELETE FROM clients")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")
	managerHash, _ := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.DefaultCost)
	manager := domain.User{
		Email:        "manager@brokercrm.local",
		Name:         "Ольга Менеджер",
		PasswordHash: string(managerHash),
		Role:         domain.RoleManager,
	}
	db.Create(&manager)

	sellerHash, _ := bcrypt.GenerateFromPassword([]byte("seller123"), bcrypt.DefaultCost)
	seller := domain.User{
		Email:        "seller@brokercrm.local",
		Name:         "Иван Продавец",
		PasswordHash: string(sellerHash),
		Role:         domain.RoleSeller,
	}
	db.Create(&seller)

	log.Println("Creating clients...")
	ivanov := domain.Client{
		Name:      "Иван Иванов",
		Phone:     "+7 900 000 00 01",
		Email:     "ivanov@example.com",
		CreatedBy: seller.ID,
	}
	db.Create(&ivanov)

	petrova := domain.Client{
		Name:      "Мария Петрова",
		Phone:     "+7 900 000 00 02",
		CreatedBy: seller.ID,
	}
	db.Create(&petrova)

	log.Println("Creating deals...")
	dealA := domain.Deal{
		Title:     "КАСКО Иванов",
		ClientID:  &ivanov.ID,
		SellerID:  seller.ID,
		Status:    domain.DealOpen,
		StageName: "quoting",
	}
	db.Create(&dealA)

	dealB := domain.Deal{
		Title:     "КАСКО Иванов (повтор)",
		ClientID:  &ivanov.ID,
		SellerID:  seller.ID,
		Status:    domain.DealOpen,
		StageName: "new",
	}
	db.Create(&dealB)

	dealC := domain.Deal{
		Title:    "ОСАГО Петрова",
		ClientID: &petrova.ID,
		SellerID: manager.ID,
		Status:   domain.DealOpen,
	}
	db.Create(&dealC)

	log.Println("Creating quotes and policies...")
	db.Create(&domain.Quote{
		DealID:           dealA.ID,
		InsuranceCompany: "Ингосстрах",
		InsuranceType:    "КАСКО",
		SumInsured:       1_500_000,
		Premium:          48_000,
		SellerID:         &seller.ID,
	})
	db.Create(&domain.Quote{
		DealID:           dealB.ID,
		InsuranceCompany: "РЕСО",
		InsuranceType:    "КАСКО",
		SumInsured:       1_400_000,
		Premium:          45_500,
	})

	policy := domain.Policy{
		DealID:   dealA.ID,
		Number:   "POL-2026-0001",
		ClientID: &ivanov.ID,
		Status:   domain.PolicyActive,
	}
	db.Create(&policy)

	log.Println("Creating payments...")
	unpaid := domain.Payment{DealID: dealA.ID, PolicyID: &policy.ID, Amount: 24_000}
	db.Create(&unpaid)

	paid := domain.Payment{DealID: dealA.ID, PolicyID: &policy.ID, Amount: 24_000}
	db.Create(&paid)
	conducted := time.Now().UTC()
	db.Create(&domain.FinancialRecord{
		PaymentID:   paid.ID,
		Amount:      24_000,
		ConductedAt: &conducted,
	})

	log.Println("Creating tasks and notes...")
	db.Create(&domain.Task{
		DealID:     dealA.ID,
		Title:      "Позвонить клиенту по продлению",
		AssigneeID: &seller.ID,
	})
	db.Create(&domain.Note{
		DealID:   dealA.ID,
		AuthorID: seller.ID,
		Text:     "Клиент просит счёт на юрлицо",
	})

	log.Println("Seed complete.")
}

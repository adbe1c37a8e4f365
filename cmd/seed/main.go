package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"veriflow/internal/database"
	"veriflow/internal/domain"
	"veriflow/internal/repository"
)

func main() {
	ctx := context.Background()

	db, err := database.Connect("veriflow.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM verification_records")
	db.Exec("DELETE FROM document_records")
	db.Exec("DELETE FROM document_counters")
	db.Exec("DELETE FROM users")

	users := repository.NewUserRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@veriflow.local",
		PasswordHash: string(adminHash),
		FirstName:    "Platform",
		LastName:     "Admin",
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		KYCStatus:    domain.KYCVerified,
	}
	if err := users.Create(ctx, &admin); err != nil {
		log.Fatal("admin create failed:", err)
	}
	log.Println("Admin created: admin@veriflow.local / admin123")

	verifierHash, _ := bcrypt.GenerateFromPassword([]byte("verifier123"), bcrypt.DefaultCost)
	verifier := domain.User{
		Email:        "verifier@veriflow.local",
		PasswordHash: string(verifierHash),
		FirstName:    "Field",
		LastName:     "Verifier",
		Role:         domain.RoleVerifier,
		IsVerified:   true,
		KYCStatus:    domain.KYCVerified,
	}
	if err := users.Create(ctx, &verifier); err != nil {
		log.Fatal("verifier create failed:", err)
	}
	log.Println("Verifier created: verifier@veriflow.local / verifier123")

	// Applicants in each stage of the KYC pipeline
	applicants := []struct {
		email    string
		status   domain.KYCStatus
		verified bool
	}{
		{"pending@example.com", domain.KYCPending, false},
		{"verified@example.com", domain.KYCVerified, true},
		{"rejected@example.com", domain.KYCRejected, false},
		{"hold@example.com", domain.KYCHold, false},
	}
	for i, a := range applicants {
		hash, _ := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        a.email,
			PasswordHash: string(hash),
			FirstName:    fmt.Sprintf("Applicant%d", i+1),
			LastName:     "Demo",
			Phone:        fmt.Sprintf("+7 777 123 45%02d", i+10),
			Role:         domain.RoleUser,
			IsVerified:   a.verified,
			KYCStatus:    a.status,
		}
		if err := users.Create(ctx, &u); err != nil {
			log.Fatal("applicant create failed:", err)
		}
	}

	log.Println("Seed completed.")
	log.Println("Test accounts:")
	log.Println("Admin:    admin@veriflow.local / admin123")
	log.Println("Verifier: verifier@veriflow.local / verifier123")
	log.Println("Users:    pending|verified|rejected|hold@example.com / user123")
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Seed provisions the initial teacher accounts, demo groups, a closed shop
// and the default reward catalog. Safe to run repeatedly: it bails out as
// soon as any teacher exists.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int, log zerolog.Logger) error {
	var teachers int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'teacher'`).Scan(&teachers); err != nil {
		return fmt.Errorf("failed to check existing teachers: %w", err)
	}
	if teachers > 0 {
		log.Info().Msg("Seed data already present, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	seedTeachers := []struct {
		login    string
		password string
		name     string
	}{
		{"ustoz1", "ustoz123", "Birinchi Ustoz"},
		{"ustoz2", "ustoz456", "Ikkinchi Ustoz"},
	}

	for _, t := range seedTeachers {
		hash, err := bcrypt.GenerateFromPassword([]byte(t.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO users (id, role, name, login, password_hash, created_at)
			VALUES ($1, 'teacher', $2, $3, $4, $5)
		`, uuid.New().String(), t.name, t.login, string(hash), now)
		if err != nil {
			return fmt.Errorf("failed to insert teacher %s: %w", t.login, err)
		}
	}

	seedGroups := []struct {
		name        string
		description string
	}{
		{"Guruh A", "Boshlang'ich guruh"},
		{"Guruh B", "O'rta guruh"},
	}

	for _, g := range seedGroups {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO groups (id, name, description, created_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), g.name, g.description, now)
		if err != nil {
			return fmt.Errorf("failed to insert group %s: %w", g.name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO shop_settings (id, is_open, updated_at) VALUES (1, false, $1)
	`, now); err != nil {
		return fmt.Errorf("failed to insert shop settings: %w", err)
	}

	seedRewards := []struct {
		name        string
		description string
		price       int
		category    string
		icon        string
	}{
		{"Konfet", "Shirin konfet", 5, "kichik", "candy"},
		{"Ruchka", "Chiroyli ruchka", 10, "kichik", "pen"},
		{"Daftar", "Katta daftar", 20, "oqish", "notebook"},
		{"Mentor Assistant", "Bir dars mentor yordamchisi", 30, "imtiyoz", "star"},
	}

	for _, rw := range seedRewards {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rewards (id, name, description, price, category, icon, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), rw.name, rw.description, rw.price, rw.category, rw.icon, now)
		if err != nil {
			return fmt.Errorf("failed to insert reward %s: %w", rw.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	log.Info().Msg("Seed data created: teachers ustoz1/ustoz2, groups A/B, 4 rewards")
	return nil
}

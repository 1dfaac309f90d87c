package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User, generatedPassword string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	GetStudents(ctx context.Context, groupID string) ([]models.StudentWithGroup, error)
	Update(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	SetAvatarURL(ctx context.Context, id, avatarURL string) error
	SetPassword(ctx context.Context, id, passwordHash, generatedPassword string) error
	GetGeneratedPassword(ctx context.Context, id string) (*string, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	CountActiveStudents(ctx context.Context) (int, error)
	CountActiveStudentsInGroup(ctx context.Context, groupID, excludeID string) (int, error)
	RankedStudents(ctx context.Context, groupID string, limit int) ([]models.User, error)
}

type userRepository struct {
	*PostgresRepository
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const userColumns = `
	id, role, name, login, password_hash, group_id, total_coins,
	avatar_icon, avatar_color, avatar_url, bio, is_active, created_at
`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Name,
		&user.Login,
		&user.PasswordHash,
		&user.GroupID,
		&user.TotalCoins,
		&user.AvatarIcon,
		&user.AvatarColor,
		&user.AvatarURL,
		&user.Bio,
		&user.IsActive,
		&user.CreatedAt,
	)
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User, generatedPassword string) error {
	query := `
		INSERT INTO users (id, role, name, login, password_hash, generated_password,
			group_id, total_coins, avatar_icon, avatar_color, bio, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var generated *string
	if generatedPassword != "" {
		generated = &generatedPassword
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Role,
		user.Name,
		user.Login,
		user.PasswordHash,
		generated,
		user.GroupID,
		user.TotalCoins,
		user.AvatarIcon,
		user.AvatarColor,
		user.Bio,
		user.IsActive,
		user.CreatedAt,
	)

	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, login))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) LoginExists(ctx context.Context, login string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, login).Scan(&exists)
	return exists, err
}

func (r *userRepository) GetStudents(ctx context.Context, groupID string) ([]models.StudentWithGroup, error) {
	query := `
		SELECT u.id, u.role, u.name, u.login, u.password_hash, u.group_id, u.total_coins,
			u.avatar_icon, u.avatar_color, u.avatar_url, u.bio, u.is_active, u.created_at,
			COALESCE(g.name, '') AS group_name
		FROM users u
		LEFT JOIN groups g ON g.id = u.group_id
		WHERE u.role = 'student'
	`
	args := []interface{}{}
	if groupID != "" {
		query += ` AND u.group_id = $1`
		args = append(args, groupID)
	}
	query += ` ORDER BY u.total_coins DESC, u.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.StudentWithGroup
	for rows.Next() {
		var s models.StudentWithGroup
		err := rows.Scan(
			&s.ID,
			&s.Role,
			&s.Name,
			&s.Login,
			&s.PasswordHash,
			&s.GroupID,
			&s.TotalCoins,
			&s.AvatarIcon,
			&s.AvatarColor,
			&s.AvatarURL,
			&s.Bio,
			&s.IsActive,
			&s.CreatedAt,
			&s.GroupName,
		)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, group_id = $2, is_active = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.GroupID,
		user.IsActive,
		user.ID,
	)

	return err
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET avatar_icon = $1, avatar_color = $2, bio = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		user.AvatarIcon,
		user.AvatarColor,
		user.Bio,
		user.ID,
	)

	return err
}

func (r *userRepository) SetAvatarURL(ctx context.Context, id, avatarURL string) error {
	query := `UPDATE users SET avatar_url = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, avatarURL, id)
	return err
}

func (r *userRepository) SetPassword(ctx context.Context, id, passwordHash, generatedPassword string) error {
	query := `UPDATE users SET password_hash = $1, generated_password = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, passwordHash, generatedPassword, id)
	return err
}

func (r *userRepository) GetGeneratedPassword(ctx context.Context, id string) (*string, error) {
	query := `SELECT generated_password FROM users WHERE id = $1`

	var generated *string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&generated)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return generated, err
}

func (r *userRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = false WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// HardDelete purges the student together with every row that references them.
// The ledger is append-only in every other path; this is the one sanctioned
// deletion, and it must not leave orphaned history behind.
func (r *userRepository) HardDelete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM coin_transactions WHERE student_id = $1`,
		`DELETE FROM attendance_records WHERE student_id = $1`,
		`DELETE FROM submissions WHERE student_id = $1`,
		`DELETE FROM messages WHERE from_user_id = $1 OR to_user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to cascade delete user: %w", err)
		}
	}

	return tx.Commit()
}

func (r *userRepository) CountActiveStudents(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = 'student' AND is_active = true`

	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (r *userRepository) CountActiveStudentsInGroup(ctx context.Context, groupID, excludeID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE role = 'student' AND is_active = true AND group_id = $1
	`
	args := []interface{}{groupID}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// RankedStudents returns active students ordered by balance descending.
// Ties keep storage order (created_at) so ranks stay stable between reads.
func (r *userRepository) RankedStudents(ctx context.Context, groupID string, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'student' AND is_active = true`
	args := []interface{}{}
	if groupID != "" {
		args = append(args, groupID)
		query += fmt.Sprintf(` AND group_id = $%d`, len(args))
	}
	query += ` ORDER BY total_coins DESC, created_at ASC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *user)
	}

	return students, rows.Err()
}

package repository

import (
	"context"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, avatar_url, avatar_path,
	timezone, role, settings, last_login, email_verified, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.AvatarPath,
		&user.Timezone,
		&user.Role,
		&user.Settings,
		&user.LastLogin,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, timezone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	role := user.Role
	if role == "" {
		role = "user"
	}

	return r.db.QueryRow(
		ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Timezone,
		role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// EmailExists reports whether a user with the given email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// UpdateProfile updates name/timezone/avatar_url, leaving absent fields intact
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, timezone, avatarURL *string) (*models.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			timezone = COALESCE($3, timezone),
			avatar_url = COALESCE($4, avatar_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, id, name, timezone, avatarURL))
}

// UpdateAvatar records the storage path and public URL of the user's avatar
func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarPath, avatarURL string) error {
	query := `
		UPDATE users SET
			avatar_path = $2,
			avatar_url = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, avatarPath, avatarURL)
	return err
}

// TouchLastLogin stamps last_login with the current time
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// ListDigestRecipients returns all users whose preferences enable the daily
// digest. Users with no preference row inherit the default (enabled).
func (r *UserRepository) ListDigestRecipients(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.password_hash, u.avatar_url, u.avatar_path,
			u.timezone, u.role, u.settings, u.last_login, u.email_verified,
			u.created_at, u.updated_at
		FROM users u
		LEFT JOIN user_preferences up ON up.user_id = u.id
		WHERE up.user_id IS NULL
		   OR COALESCE((up.notification_settings->>'dailyDigest')::boolean, true)`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

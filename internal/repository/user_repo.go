package repository

import (
	"database/sql"
	"time"

	"typier/internal/database"
	"typier/internal/models"
)

// UserRepository handles user accounts and browser login sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at"

// CreateUser creates a password-based account
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

// CreateOAuthUser creates an account backed by an external identity
func (r *UserRepository) CreateOAuthUser(email, name, provider, subject string) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	id, err := r.db.ExecReturningID(query, email, name, provider, subject, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

// GetUserByID returns a user, or nil when unknown
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByEmail returns a user, or nil when unknown
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// GetUserByOAuth returns the user bound to an external identity, or nil
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

// ListUsers returns all users, newest first
func (r *UserRepository) ListUsers() ([]models.User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) getUser(query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.OAuthProvider, &user.OAuthSubject, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAuthSession stores a browser login session
func (r *UserRepository) CreateAuthSession(session *models.AuthSession) error {
	query := "INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt)
	return err
}

// GetAuthSession returns a login session, or nil when unknown
func (r *UserRepository) GetAuthSession(id string) (*models.AuthSession, error) {
	session := &models.AuthSession{}
	err := r.db.QueryRow(
		"SELECT id, user_id, created_at, expires_at FROM auth_sessions WHERE id = ?", id,
	).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteAuthSession removes a login session
func (r *UserRepository) DeleteAuthSession(id string) error {
	_, err := r.db.Exec("DELETE FROM auth_sessions WHERE id = ?", id)
	return err
}

// DeleteExpiredAuthSessions removes login sessions past their expiry
func (r *UserRepository) DeleteExpiredAuthSessions() (int64, error) {
	result, err := r.db.Exec("DELETE FROM auth_sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/utils"
)

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
	// ErrEmptyPatch is returned by Update when the patch changes nothing.
	ErrEmptyPatch = errors.New("no fields to update")
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password with the given bcrypt cost, inserts the user
// and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		strings.TrimSpace(name), normalizeEmail(email), hash, string(role))
	if err != nil {
		if mysqlCode(err) == errDupEntry {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,name,email,password_hash,role,created_at"

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	u.Role = model.Role(role)
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "email=?", normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "id=?", id)
}

// Update applies patch to the user.  The statement is the same for
// every patch: each column takes a (set, value) pair and keeps its
// current value when set is false.
func (r *UserRepo) Update(ctx context.Context, id uint64, patch model.UserPatch, cost int) error {
	if patch.Empty() {
		return ErrEmptyPatch
	}
	name, setName := patch.Name.Get()
	email, setEmail := patch.Email.Get()
	role, setRole := patch.Role.Get()
	password, setPassword := patch.Password.Get()

	var hash string
	if setPassword {
		h, err := utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		hash = h
	}

	const q = `UPDATE users SET
	             name = IF(?, ?, name),
	             email = IF(?, ?, email),
	             role = IF(?, ?, role),
	             password_hash = IF(?, ?, password_hash)
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q,
		setName, strings.TrimSpace(name),
		setEmail, normalizeEmail(email),
		setRole, string(role),
		setPassword, hash,
		id)
	if err != nil {
		if mysqlCode(err) == errDupEntry {
			return ErrEmailExists
		}
		return fmt.Errorf("repository.UserRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

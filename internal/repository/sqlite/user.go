package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/msomdec/book-catalog/internal/domain"
)

const (
	userColumns = `UserId, FirstName, LastName, Email, Password, Role`

	sqlSelectAllUsers    = `SELECT ` + userColumns + ` FROM BookUser ORDER BY UserId ASC`
	sqlSelectUserByID    = `SELECT ` + userColumns + ` FROM BookUser WHERE UserId = @id`
	sqlSelectUserByEmail = `SELECT ` + userColumns + ` FROM BookUser WHERE Email = @email`
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, sqlSelectAllUsers)
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeError("list users", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, sqlSelectUserByID, sql.Named("id", id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("get user by id", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, sqlSelectUserByEmail, sql.Named("email", email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("get user by email", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &role); err != nil {
		return nil, err
	}
	u.Role = domain.ParseRole(role)
	return &u, nil
}

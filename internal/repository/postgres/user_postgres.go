package postgres

import (
	"context"
	"database/sql"
	"errors"

	"testlab/internal/model"
	"testlab/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// IsNoRowsError reports whether err is the driver's no-rows sentinel.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, name, age, email, avatar_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, age, email, avatar_path, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Name,
		u.Age,
		u.Email,
		u.AvatarPath,
		u.CreatedAt,
	)
	var out model.User
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.Age,
		&out.Email,
		&out.AvatarPath,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, name, age, email, avatar_path, created_at
		FROM users
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Age,
		&u.Email,
		&u.AvatarPath,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns users using LIMIT/OFFSET pagination and a total count.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	const qCount = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, age, email, avatar_path, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Age,
			&u.Email,
			&u.AvatarPath,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateAvatarPath sets the avatar object key for a user.
// It returns sql.ErrNoRows when the user does not exist.
func (r *UserPostgres) UpdateAvatarPath(ctx context.Context, id, avatarPath string) error {
	const q = `UPDATE users SET avatar_path = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, avatarPath)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a user by ID. Deleting a missing row is not an error.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/operator"
)

type operatorRepository struct {
	db *sqlx.DB
}

var _ operator.Repository = (*operatorRepository)(nil)

func NewOperatorRepository(db *sqlx.DB) operator.Repository {
	return &operatorRepository{db: db}
}

// dbOperator is the row shape of the operator table.
type dbOperator struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (row dbOperator) toOperator() operator.Operator {
	op := operator.Operator{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		op.LastLogin = row.LastLogin.Time.UTC()
	}
	return op
}

func toRow(op operator.Operator) dbOperator {
	row := dbOperator{
		ID:           op.ID,
		Name:         op.Name,
		Username:     op.Username,
		Email:        op.Email,
		IsActive:     op.IsActive,
		Roles:        pq.StringArray(op.Roles),
		PasswordHash: op.PasswordHash,
		CreatedAt:    op.CreatedAt,
		UpdatedAt:    op.UpdatedAt,
	}
	if !op.LastLogin.IsZero() {
		row.LastLogin = sql.NullTime{Time: op.LastLogin, Valid: true}
	}
	return row
}

func (repo *operatorRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excluded ...operator.Operator) error {
	var rows []dbOperator
	q := `SELECT id, username, email FROM operator WHERE username = $1 OR email = $2`
	if err := repo.db.SelectContext(ctx, &rows, q, username, email); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}

outer:
	for _, row := range rows {
		for _, ex := range excluded {
			if ex.ID == row.ID {
				continue outer
			}
		}
		if row.Username == username {
			return operator.ErrUsernameExists
		}
		if row.Email == email {
			return operator.ErrEmailExists
		}
	}
	return nil
}

func (repo *operatorRepository) CreateOperator(ctx context.Context, op operator.Operator) (operator.Operator, error) {
	q := `
	INSERT INTO operator (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
	VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, toRow(op)); err != nil {
		return operator.Operator{}, errors.Wrap(err, "inserting operator")
	}
	return op, nil
}

func (repo *operatorRepository) QueryAllOperators(ctx context.Context) ([]operator.Operator, error) {
	var rows []dbOperator
	q := `SELECT * FROM operator ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying operators")
	}

	ops := make([]operator.Operator, len(rows))
	for i, row := range rows {
		ops[i] = row.toOperator()
	}
	return ops, nil
}

func (repo *operatorRepository) GetOperatorByID(ctx context.Context, id string) (operator.Operator, error) {
	var row dbOperator
	q := `SELECT * FROM operator WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return operator.Operator{}, operator.ErrNotFound
		}
		return operator.Operator{}, errors.Wrap(err, "getting operator")
	}
	return row.toOperator(), nil
}

func (repo *operatorRepository) GetOperatorByUsernameOrEmail(ctx context.Context, uname string) (operator.Operator, error) {
	var row dbOperator
	q := `SELECT * FROM operator WHERE username = $1 OR email = $1`
	if err := repo.db.GetContext(ctx, &row, q, uname); err != nil {
		if err == sql.ErrNoRows {
			return operator.Operator{}, operator.ErrNotFound
		}
		return operator.Operator{}, errors.Wrap(err, "getting operator")
	}
	return row.toOperator(), nil
}

func (repo *operatorRepository) UpdateOperator(ctx context.Context, op operator.Operator, isActive *bool) (operator.Operator, error) {
	curr, err := repo.GetOperatorByID(ctx, op.ID)
	if err != nil {
		return operator.Operator{}, err
	}

	curr.Name = op.Name
	curr.Username = op.Username
	curr.Email = op.Email
	if op.Roles != nil {
		curr.Roles = op.Roles
	}
	if len(op.PasswordHash) > 0 {
		curr.PasswordHash = op.PasswordHash
	}
	if isActive != nil {
		curr.IsActive = *isActive
	}
	curr.UpdatedAt = op.UpdatedAt
	if curr.UpdatedAt.IsZero() {
		curr.UpdatedAt = time.Now().UTC()
	}

	q := `
	UPDATE operator
	SET name = :name, username = :username, email = :email, is_active = :is_active,
	    roles = :roles, password_hash = :password_hash, updated_at = :updated_at
	WHERE id = :id`
	if _, err = repo.db.NamedExecContext(ctx, q, toRow(curr)); err != nil {
		return operator.Operator{}, errors.Wrap(err, "updating operator")
	}
	return curr, nil
}

func (repo *operatorRepository) UpdateOrCreateOperator(ctx context.Context, op operator.Operator) (operator.Operator, error) {
	if op.ID == "" {
		return operator.Operator{}, errors.New("operator ID is required")
	}
	if _, err := repo.GetOperatorByID(ctx, op.ID); err != nil {
		if err != operator.ErrNotFound {
			return operator.Operator{}, err
		}
		now := time.Now().UTC()
		op.CreatedAt = now
		op.UpdatedAt = now
		return repo.CreateOperator(ctx, op)
	}

	q := `
	UPDATE operator
	SET name = :name, username = :username, email = :email, is_active = :is_active,
	    roles = :roles, password_hash = :password_hash, updated_at = :updated_at
	WHERE id = :id`
	op.UpdatedAt = time.Now().UTC()
	if _, err := repo.db.NamedExecContext(ctx, q, toRow(op)); err != nil {
		return operator.Operator{}, errors.Wrap(err, "upserting operator")
	}
	return op, nil
}

func (repo *operatorRepository) SetLastLogin(ctx context.Context, op operator.Operator) (operator.Operator, error) {
	op.LastLogin = time.Now().UTC()
	q := `UPDATE operator SET last_login = $1 WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, q, op.LastLogin, op.ID); err != nil {
		return operator.Operator{}, errors.Wrap(err, "setting last login")
	}
	return op, nil
}

func (repo *operatorRepository) DeleteOperatorsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM operator WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	q = repo.db.Rebind(q)
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting operators")
	}
	return nil
}

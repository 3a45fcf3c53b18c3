// Package inmemdb is an in-memory operator store for DEV and tests.
package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/kiwisport/clubboard/core/operator"
)

type operatorRepository struct {
	mu sync.RWMutex
	t  map[string]*operator.Operator
}

var _ operator.Repository = (*operatorRepository)(nil)

func NewOperatorRepository() operator.Repository {
	return &operatorRepository{t: make(map[string]*operator.Operator)}
}

func (r *operatorRepository) query() []operator.Operator {
	res := make([]operator.Operator, 0, len(r.t))
	for _, op := range r.t {
		res = append(res, *op)
	}
	return res
}

func (r *operatorRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excluded ...operator.Operator) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

outer:
	for _, op := range r.query() {
		for _, ex := range excluded {
			if ex.ID == op.ID {
				continue outer
			}
		}
		if op.Username == username {
			return operator.ErrUsernameExists
		}
		if op.Email == email {
			return operator.ErrEmailExists
		}
	}
	return nil
}

func (r *operatorRepository) CreateOperator(_ context.Context, op operator.Operator) (operator.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t[op.ID] = &op
	return op, nil
}

func (r *operatorRepository) QueryAllOperators(_ context.Context) ([]operator.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.query(), nil
}

func (r *operatorRepository) GetOperatorByID(_ context.Context, id string) (operator.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if op, ok := r.t[id]; ok {
		return *op, nil
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (r *operatorRepository) GetOperatorByUsernameOrEmail(_ context.Context, uname string) (operator.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, op := range r.t {
		if op.Username == uname || op.Email == uname {
			return *op, nil
		}
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (r *operatorRepository) UpdateOperator(_ context.Context, op operator.Operator, isActive *bool) (operator.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	curr, ok := r.t[op.ID]
	if !ok {
		return operator.Operator{}, operator.ErrNotFound
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
	return *curr, nil
}

func (r *operatorRepository) UpdateOrCreateOperator(ctx context.Context, op operator.Operator) (operator.Operator, error) {
	r.mu.RLock()
	_, ok := r.t[op.ID]
	r.mu.RUnlock()

	if !ok {
		now := time.Now().UTC()
		op.CreatedAt = now
		op.UpdatedAt = now
		return r.CreateOperator(ctx, op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	op.UpdatedAt = time.Now().UTC()
	r.t[op.ID] = &op
	return op, nil
}

func (r *operatorRepository) SetLastLogin(_ context.Context, op operator.Operator) (operator.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	curr, ok := r.t[op.ID]
	if !ok {
		return operator.Operator{}, operator.ErrNotFound
	}
	curr.LastLogin = time.Now().UTC()
	return *curr, nil
}

func (r *operatorRepository) DeleteOperatorsByID(_ context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.t, id)
	}
	return nil
}

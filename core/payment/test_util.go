package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/volatiletech/null/v8"
)

// APIMock is an in-memory payments API for tests. Err, when set, fails
// every call; Calls records the methods invoked.
type APIMock struct {
	mu      sync.Mutex
	Records []Record
	NextID  int
	Err     error
	Calls   []string

	// ListHook, when set before use, runs at the start of each
	// ListPayments call. Lets tests hold a fetch in flight.
	ListHook func()
}

var _ API = (*APIMock)(nil)

func NewAPIMock(records ...Record) *APIMock {
	nextID := 1
	for _, rec := range records {
		if rec.ID.Valid && rec.ID.Int >= nextID {
			nextID = rec.ID.Int + 1
		}
	}
	return &APIMock{Records: records, NextID: nextID}
}

func (a *APIMock) record(call string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, call)
	return a.Err
}

func (a *APIMock) ListPayments(_ context.Context) ([]Record, error) {
	if hook := a.ListHook; hook != nil {
		hook()
	}
	if err := a.record("ListPayments"); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	res := make([]Record, len(a.Records))
	copy(res, a.Records)
	return res, nil
}

func (a *APIMock) CreatePayment(_ context.Context, rec Record) (Record, error) {
	if err := a.record("CreatePayment"); err != nil {
		return Record{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec.ID = null.IntFrom(a.NextID)
	a.NextID++
	a.Records = append(a.Records, rec)
	return rec, nil
}

func (a *APIMock) UpdatePayment(_ context.Context, id int, rec Record) (Record, error) {
	if err := a.record(fmt.Sprintf("UpdatePayment %d", id)); err != nil {
		return Record{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.Records {
		if a.Records[i].ID.Valid && a.Records[i].ID.Int == id {
			rec.ID = null.IntFrom(id)
			a.Records[i] = rec
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("payment record %d not found", id)
}

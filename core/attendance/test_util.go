package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/volatiletech/null/v8"
)

// APIMock is an in-memory attendance API for tests. Err, when set,
// fails every call; Calls records the methods invoked.
type APIMock struct {
	mu      sync.Mutex
	Records []Record
	NextID  int
	Err     error
	Calls   []string

	// ListHook, when set before use, runs at the start of each
	// ListAttendance call. Lets tests hold a fetch in flight.
	ListHook func()

	// CreateHook, same, for CreateAttendance. Lets tests hold a save
	// in flight.
	CreateHook func()
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

func (a *APIMock) ListAttendance(_ context.Context, date string) ([]Record, error) {
	if hook := a.ListHook; hook != nil {
		hook()
	}
	if err := a.record("ListAttendance " + date); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	res := make([]Record, 0)
	for _, rec := range a.Records {
		if rec.Date == date {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (a *APIMock) CreateAttendance(_ context.Context, rec Record) (Record, error) {
	if hook := a.CreateHook; hook != nil {
		hook()
	}
	if err := a.record("CreateAttendance"); err != nil {
		return Record{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec.ID = null.IntFrom(a.NextID)
	a.NextID++
	a.Records = append(a.Records, rec)
	return rec, nil
}

func (a *APIMock) UpdateAttendance(_ context.Context, id int, rec Record) (Record, error) {
	if err := a.record(fmt.Sprintf("UpdateAttendance %d", id)); err != nil {
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
	return Record{}, fmt.Errorf("attendance record %d not found", id)
}

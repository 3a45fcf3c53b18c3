package member

import (
	"context"
	"sync"

	"github.com/volatiletech/null/v8"
)

// DirectoryMock is an in-memory Directory for tests. Err, when set,
// fails every call; Calls records the methods invoked.
type DirectoryMock struct {
	mu      sync.Mutex
	Members []Member
	NextID  int
	Err     error
	Calls   []string

	// ListHook, when set before use, runs at the start of each
	// ListMembers call. Lets tests hold a fetch in flight.
	ListHook func()
}

var _ Directory = (*DirectoryMock)(nil)

func NewDirectoryMock(members ...Member) *DirectoryMock {
	nextID := 1
	for _, m := range members {
		if m.ID >= nextID {
			nextID = m.ID + 1
		}
	}
	return &DirectoryMock{Members: members, NextID: nextID}
}

func (d *DirectoryMock) record(call string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, call)
	return d.Err
}

func (d *DirectoryMock) ListMembers(_ context.Context) ([]Member, error) {
	if hook := d.ListHook; hook != nil {
		hook()
	}
	if err := d.record("ListMembers"); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]Member, len(d.Members))
	copy(res, d.Members)
	return res, nil
}

func (d *DirectoryMock) CreateMember(_ context.Context, data NewMember) (Member, error) {
	if err := d.record("CreateMember"); err != nil {
		return Member{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	m := memberFromFields(data.Name, data.PhoneNumber, data.DateOfBirth, data.RegistrationDate, data.PassportNumber, data.SportType)
	m.ID = d.NextID
	d.NextID++
	d.Members = append(d.Members, m)
	return m, nil
}

func (d *DirectoryMock) UpdateMember(_ context.Context, id int, data UpdateMember) (Member, error) {
	if err := d.record("UpdateMember"); err != nil {
		return Member{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.Members {
		if d.Members[i].ID == id {
			m := memberFromFields(data.Name, data.PhoneNumber, data.DateOfBirth, data.RegistrationDate, data.PassportNumber, data.SportType)
			m.ID = id
			m.SubscriptionStatus = d.Members[i].SubscriptionStatus
			m.Image = d.Members[i].Image
			d.Members[i] = m
			return m, nil
		}
	}
	return Member{}, ErrNotFound
}

func (d *DirectoryMock) DeleteMember(_ context.Context, id int) error {
	if err := d.record("DeleteMember"); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.Members {
		if d.Members[i].ID == id {
			d.Members = append(d.Members[:i], d.Members[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func memberFromFields(name, phone, dob, regDate, passport, sport string) Member {
	return Member{
		Name:               name,
		PhoneNumber:        null.NewString(phone, phone != ""),
		DateOfBirth:        null.NewString(dob, dob != ""),
		RegistrationDate:   null.NewString(regDate, regDate != ""),
		PassportNumber:     null.NewString(passport, passport != ""),
		SportType:          null.NewString(sport, sport != ""),
		SubscriptionStatus: SubscriptionActive,
	}
}

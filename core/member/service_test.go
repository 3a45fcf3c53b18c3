package member

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRosterRefreshAndRows(t *testing.T) {
	dir := NewDirectoryMock(testMembers()...)
	roster := NewRoster(dir)

	ctx := context.Background()
	if err := roster.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	rows := roster.Rows()
	if len(rows) != 4 {
		t.Fatalf("Rows() returned %d rows, want 4", len(rows))
	}
	for _, row := range rows {
		if row.AvatarColor != AvatarColor(row.Name) {
			t.Errorf("row %d AvatarColor = %s", row.ID, row.AvatarColor)
		}
		if row.SportColor != SportColor(row.Sport()) {
			t.Errorf("row %d SportColor = %s", row.ID, row.SportColor)
		}
	}

	roster.SetFilter(QueryFilter{Search: "karim"})
	rows = roster.Rows()
	if len(rows) != 2 {
		t.Errorf("Rows() with search returned %d rows, want 2", len(rows))
	}
}

func TestRosterRefreshFailureSurfaces(t *testing.T) {
	dir := NewDirectoryMock(testMembers()...)
	roster := NewRoster(dir)

	dir.Err = errors.New("boom")
	if err := roster.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should surface the fetch failure")
	}
	// cache untouched
	if rows := roster.Rows(); len(rows) != 0 {
		t.Errorf("Rows() = %d rows after failed refresh, want 0", len(rows))
	}
}

func TestRosterStaleFetchDiscarded(t *testing.T) {
	dir := NewDirectoryMock(testMembers()...)
	roster := NewRoster(dir)
	ctx := context.Background()

	// a competing refresh supersedes the first one before its result lands
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	blocks := make(chan bool, 2)
	blocks <- true  // first fetch stalls
	blocks <- false // second fetch completes
	dir.ListHook = func() {
		started <- struct{}{}
		if <-blocks {
			<-release
		}
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- roster.Refresh(ctx) }()

	// let the first fetch start, then supersede it
	<-started
	if err := roster.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh() failed: %v", err)
	}

	close(release)
	if err := <-firstDone; err != ErrStaleFetch {
		t.Errorf("first Refresh() error = %v, want ErrStaleFetch", err)
	}
	if rows := roster.Rows(); len(rows) != 4 {
		t.Errorf("Rows() = %d rows, want 4", len(rows))
	}
}

func TestRosterConcurrentRowsAndEdit(t *testing.T) {
	dir := NewDirectoryMock(testMembers()...)
	roster := NewRoster(dir)
	ctx := context.Background()

	if err := roster.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	m, err := roster.Get(1)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	var um UpdateMember
	um.FromMember(m)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, row := range roster.Rows() {
				_ = row.Name
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			um.PhoneNumber = fmt.Sprintf("+243 %03d", i)
			if _, err := roster.Edit(ctx, 1, um); err != nil {
				t.Errorf("Edit() failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestRosterMutations(t *testing.T) {
	dir := NewDirectoryMock(testMembers()...)
	roster := NewRoster(dir)
	ctx := context.Background()

	if err := roster.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	// add
	added, err := roster.Add(ctx, NewMember{Name: "Fatima", SportType: SportGym})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if added.ID == 0 {
		t.Error("Add() did not assign an id")
	}
	if _, err := roster.Get(added.ID); err != nil {
		t.Errorf("Get() after Add() failed: %v", err)
	}

	// edit is a full replacement
	var um UpdateMember
	um.FromMember(added)
	um.PhoneNumber = "+243 111"
	um.SportType = ""
	edited, err := roster.Edit(ctx, added.ID, um)
	if err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}
	if edited.PhoneNumber.String != "+243 111" {
		t.Errorf("Edit() PhoneNumber = %q", edited.PhoneNumber.String)
	}
	if edited.SportType.Valid {
		t.Error("Edit() should clear the sport")
	}

	// delete requires confirmation
	if err := roster.Delete(ctx, added.ID, false); err != ErrNotConfirmed {
		t.Errorf("Delete() unconfirmed error = %v, want ErrNotConfirmed", err)
	}
	for _, call := range dir.Calls {
		if call == "DeleteMember" {
			t.Fatal("unconfirmed Delete() must not issue a request")
		}
	}
	if err := roster.Delete(ctx, added.ID, true); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := roster.Get(added.ID); err != ErrNotFound {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

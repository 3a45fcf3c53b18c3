package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/member"
)

var (
	// errors
	ErrReadOnlyDate = errors.New("attendance can only be marked for today")
	ErrStaleFetch   = errors.New("stale fetch discarded")

	nowFunc = time.Now // mockable
)

const dateLayout = "2006-01-02"

func today() string { return nowFunc().UTC().Format(dateLayout) }

// Board is the attendance page view state: the member and record
// collections for the selected date, plus the sport filter. Marks are
// applied optimistically and reconciled with the server response;
// a failed mark reverts to the prior status.
type Board struct {
	mu       sync.Mutex
	api      API
	dir      member.Directory
	date     string
	sport    string
	members  []member.Member
	records  []Record
	fetchTag uuid.UUID
}

func NewBoard(api API, dir member.Directory) *Board {
	return &Board{api: api, dir: dir, date: today()}
}

// SetDate changes the selected date. Any fetch in flight for the old
// date is superseded; its late response will be discarded.
func (b *Board) SetDate(date string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if date == b.date {
		return
	}
	b.date = date
	b.fetchTag = uuid.UUID{} // invalidate in-flight fetches
}

func (b *Board) SetSport(sport string) {
	b.mu.Lock()
	b.sport = sport
	b.mu.Unlock()
}

func (b *Board) Date() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.date
}

// Refresh fetches the full member list and the selected date's records.
// The fetch is tagged with the selection it was issued for; if the
// selection changed (or a newer refresh started) before the responses
// landed, the result is dropped and ErrStaleFetch returned.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	tag := uuid.New()
	b.fetchTag = tag
	date := b.date
	b.mu.Unlock()

	members, err := b.dir.ListMembers(ctx)
	if err == nil {
		var records []Record
		if records, err = b.api.ListAttendance(ctx, date); err == nil {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.fetchTag != tag || b.date != date {
				return ErrStaleFetch
			}
			b.members = members
			b.records = records
			return nil
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fetchTag != tag || b.date != date {
		return ErrStaleFetch
	}
	return pkgerrors.Wrapf(err, "fetching attendance for %s", date)
}

// Sheet derives the day sheet from the current state. The collections
// are copied under the lock; Mark edits records in place.
func (b *Board) Sheet() DaySheet {
	b.mu.Lock()
	members := make([]member.Member, len(b.members))
	copy(members, b.members)
	records := make([]Record, len(b.records))
	copy(records, b.records)
	date, sport := b.date, b.sport
	b.mu.Unlock()

	sheet := BuildDaySheet(members, records, date, sport)
	sheet.ReadOnly = date != today()
	return sheet
}

// Mark sets a member's status for the selected date. The local record
// is updated before the request is issued; on success the
// server-assigned id is merged in, on failure the prior state is
// restored and the error returned. An existing record id selects an
// update over a create, so re-marking never duplicates records.
func (b *Board) Mark(ctx context.Context, memberID int, status string) error {
	b.mu.Lock()
	date := b.date
	if date != today() {
		b.mu.Unlock()
		return ErrReadOnlyDate
	}

	// optimistic apply, remembering how to roll back
	prev, existed := b.upsertStatus(memberID, date, status)
	b.mu.Unlock()

	rec := Record{Member: memberID, Date: date, Status: status}
	var saved Record
	var err error
	if existed && prev.ID.Valid {
		saved, err = b.api.UpdateAttendance(ctx, prev.ID.Int, rec)
	} else {
		saved, err = b.api.CreateAttendance(ctx, rec)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		// roll back the optimistic status, unless the selection moved
		// on and the records now belong to another date
		if b.date == date {
			if existed {
				b.replaceRecord(memberID, prev)
			} else {
				b.removeRecord(memberID)
			}
		}
		return pkgerrors.Wrap(err, "saving attendance")
	}
	if b.date == date {
		// keep the optimistically applied status; merge the server id
		saved.Status = status
		b.replaceRecord(memberID, saved)
	}
	return nil
}

// upsertStatus sets the member's local record status, creating an
// unsaved record when none exists. Returns the prior record and whether
// one existed. Caller must hold the lock.
func (b *Board) upsertStatus(memberID int, date, status string) (prev Record, existed bool) {
	for i := range b.records {
		if b.records[i].Member == memberID {
			prev = b.records[i]
			b.records[i].Status = status
			return prev, true
		}
	}
	b.records = append(b.records, Record{Member: memberID, Date: date, Status: status})
	return Record{}, false
}

func (b *Board) replaceRecord(memberID int, rec Record) {
	for i := range b.records {
		if b.records[i].Member == memberID {
			b.records[i] = rec
			return
		}
	}
	b.records = append(b.records, rec)
}

func (b *Board) removeRecord(memberID int) {
	for i := range b.records {
		if b.records[i].Member == memberID {
			b.records = append(b.records[:i], b.records[i+1:]...)
			return
		}
	}
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/member"
)

var (
	// errors
	ErrStaleFetch = errors.New("stale fetch discarded")

	nowFunc = time.Now // mockable
)

const monthLayout = "2006-01"

func currentMonth() string { return nowFunc().UTC().Format(monthLayout) }

// Ledger is the payments page view state: cached member and payment
// collections, the selected month, and the search/sport filters.
type Ledger struct {
	mu       sync.Mutex
	api      API
	dir      member.Directory
	month    string
	filter   member.QueryFilter
	members  []member.Member
	payments []Record
	fetchTag uuid.UUID
}

func NewLedger(api API, dir member.Directory) *Ledger {
	return &Ledger{api: api, dir: dir, month: currentMonth()}
}

// SetMonth changes the selected month and supersedes in-flight fetches.
func (l *Ledger) SetMonth(month string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if month == l.month {
		return
	}
	l.month = month
	l.fetchTag = uuid.UUID{}
}

func (l *Ledger) SetFilter(qf member.QueryFilter) {
	qf.Clean()
	l.mu.Lock()
	l.filter = qf
	l.mu.Unlock()
}

func (l *Ledger) Month() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.month
}

// Refresh fetches the member list and the full payment collection.
// The month filtering happens locally in the sheet derivation. Fetches
// are tagged with the selection; superseded results are discarded.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	tag := uuid.New()
	l.fetchTag = tag
	month := l.month
	l.mu.Unlock()

	members, err := l.dir.ListMembers(ctx)
	var payments []Record
	if err == nil {
		payments, err = l.api.ListPayments(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fetchTag != tag || l.month != month {
		return ErrStaleFetch
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "fetching payments for %s", month)
	}
	l.members = members
	l.payments = payments
	return nil
}

// Sheet derives the month sheet from the current state. The collections
// are copied under the lock; Save edits payments in place.
func (l *Ledger) Sheet() MonthSheet {
	l.mu.Lock()
	members := make([]member.Member, len(l.members))
	copy(members, l.members)
	payments := make([]Record, len(l.payments))
	copy(payments, l.payments)
	month, qf := l.month, l.filter
	l.mu.Unlock()
	return BuildMonthSheet(members, payments, month, qf)
}

// MemberSport returns the cached sport of a member, or "" when the
// member is unknown.
func (l *Ledger) MemberSport(id int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		if m.ID == id {
			return m.Sport()
		}
	}
	return ""
}

// Save submits a full replacement payment for the selected month.
// A present payment id selects update over create. On success the
// returned record is spliced into the collection (replace by id, or
// append when new); on failure the collection is left untouched so the
// edit can be retried.
func (l *Ledger) Save(ctx context.Context, data SavePayment) (Record, error) {
	l.mu.Lock()
	month := l.month
	l.mu.Unlock()

	rec := Record{
		Member:    data.MemberID,
		Month:     month + "-01",
		Status:    data.Status,
		Amount:    data.Amount,
		Assurance: data.Assurance,
		Passport:  data.Passport,
	}

	var saved Record
	var err error
	if data.PaymentID.Valid {
		saved, err = l.api.UpdatePayment(ctx, data.PaymentID.Int, rec)
	} else {
		saved, err = l.api.CreatePayment(ctx, rec)
	}
	if err != nil {
		return Record{}, pkgerrors.Wrap(err, "saving payment")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.payments {
		if l.payments[i].ID.Valid && l.payments[i].ID.Int == saved.ID.Int {
			l.payments[i] = saved
			return saved, nil
		}
	}
	l.payments = append(l.payments, saved)
	return saved, nil
}

// UnpaidReminder builds a reminder email listing the sheet's unpaid
// members, or nil when everyone has paid.
func UnpaidReminder(sheet MonthSheet, to mail.Address) *core.EmailMessage {
	var unpaid []MonthRow
	for _, row := range sheet.Rows {
		if row.Status == StatusUnpaid {
			unpaid = append(unpaid, row)
		}
	}
	if len(unpaid) == 0 {
		return nil
	}

	body := fmt.Sprintf("%d member(s) have not paid for %s:\n", len(unpaid), sheet.Month)
	for _, row := range unpaid {
		sport := row.SportType
		if sport == "" {
			sport = "-"
		}
		body += fmt.Sprintf("  - %s (%s)\n", row.MemberName, sport)
	}

	return &core.EmailMessage{
		To:      []mail.Address{to},
		Subject: fmt.Sprintf("Unpaid memberships for %s", sheet.Month),
		BodyStr: body,
	}
}

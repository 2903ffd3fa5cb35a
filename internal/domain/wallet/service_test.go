package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	balance int64
	sum     int64
	entries map[uuid.UUID]*LedgerEntry

	creditCalls  int
	debitCalls   int
	reserveCalls int
	failCalls    int
}

func newFakeRepo(balance int64) *fakeRepo {
	return &fakeRepo{balance: balance, entries: map[uuid.UUID]*LedgerEntry{}}
}

func (f *fakeRepo) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return f.balance, nil
}

func (f *fakeRepo) newEntry(accountID uuid.UUID, signed int64, category Category, status Status) *LedgerEntry {
	e := &LedgerEntry{ID: uuid.New(), AccountID: accountID, Category: category, Amount: signed, Status: status}
	f.entries[e.ID] = e
	return e
}

func (f *fakeRepo) Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	f.creditCalls++
	f.balance += amount
	return f.newEntry(accountID, amount, category, StatusSuccess), f.balance, nil
}

func (f *fakeRepo) Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	f.debitCalls++
	if f.balance < amount {
		return nil, 0, ErrInsufficientBalance
	}
	f.balance -= amount
	return f.newEntry(accountID, -amount, category, StatusSuccess), f.balance, nil
}

func (f *fakeRepo) Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, error) {
	f.reserveCalls++
	if f.balance < amount {
		return nil, ErrInsufficientBalance
	}
	f.balance -= amount
	return f.newEntry(accountID, -amount, category, StatusPending), nil
}

func (f *fakeRepo) FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra Metadata) error {
	e, ok := f.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	if e.Status != StatusPending {
		return ErrEntryNotPending
	}
	e.Status = StatusSuccess
	return nil
}

func (f *fakeRepo) FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error {
	f.failCalls++
	e, ok := f.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	if e.Status != StatusPending {
		return ErrEntryNotPending
	}
	e.Status = StatusFailed
	f.balance += -e.Amount
	return nil
}

func (f *fakeRepo) CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta Metadata) (*LedgerEntry, error) {
	return f.newEntry(accountID, amount, CategoryDeposit, StatusPending), nil
}

func (f *fakeRepo) ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra Metadata) (int64, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return 0, ErrEntryNotFound
	}
	if e.Status == StatusSuccess {
		return f.balance, nil
	}
	if e.Status != StatusPending {
		return 0, ErrEntryNotPending
	}
	e.Status = StatusSuccess
	f.balance += e.Amount
	return f.balance, nil
}

func (f *fakeRepo) FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error {
	e, ok := f.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	if e.Status != StatusPending {
		return ErrEntryNotPending
	}
	e.Status = StatusFailed
	return nil
}

func (f *fakeRepo) GetEntry(ctx context.Context, id uuid.UUID) (*LedgerEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

func (f *fakeRepo) List(ctx context.Context, accountID uuid.UUID, filter Filter) ([]*LedgerEntry, int, error) {
	out := []*LedgerEntry{}
	for _, e := range f.entries {
		if accountID == uuid.Nil || e.AccountID == accountID {
			out = append(out, e)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListStalePending(ctx context.Context, cutoff time.Time, deposits bool) ([]*LedgerEntry, error) {
	out := []*LedgerEntry{}
	for _, e := range f.entries {
		if e.Status != StatusPending {
			continue
		}
		if deposits != (e.Category == CategoryDeposit) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) SumSuccess(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return f.sum, nil
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	repo := newFakeRepo(1000)
	svc := NewService(repo)

	for _, amount := range []int64{0, -50} {
		_, _, err := svc.Credit(context.Background(), uuid.New(), amount, CategoryDeposit, "", nil)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if repo.creditCalls != 0 {
		t.Errorf("repository must not be touched on invalid amounts, got %d calls", repo.creditCalls)
	}
}

func TestDebitRejectsNonPositiveAmounts(t *testing.T) {
	repo := newFakeRepo(1000)
	svc := NewService(repo)

	for _, amount := range []int64{0, -50} {
		_, _, err := svc.Debit(context.Background(), uuid.New(), amount, CategoryAirtime, "", nil)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if repo.debitCalls != 0 {
		t.Errorf("repository must not be touched on invalid amounts, got %d calls", repo.debitCalls)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	repo := newFakeRepo(100)
	svc := NewService(repo)

	_, _, err := svc.Debit(context.Background(), uuid.New(), 500, CategoryAirtime, "", nil)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if repo.balance != 100 {
		t.Errorf("balance must be untouched, got %d", repo.balance)
	}
}

func TestFinalizeFailureRefundsOnce(t *testing.T) {
	repo := newFakeRepo(1000)
	svc := NewService(repo)
	accountID := uuid.New()

	entry, err := svc.Reserve(context.Background(), accountID, 600, CategoryData, "", nil)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if repo.balance != 400 {
		t.Fatalf("expected reserved balance 400, got %d", repo.balance)
	}

	if err := svc.FinalizeFailure(context.Background(), entry.ID, "vendor timeout"); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	if repo.balance != 1000 {
		t.Errorf("expected refund to 1000, got %d", repo.balance)
	}

	err = svc.FinalizeFailure(context.Background(), entry.ID, "vendor timeout")
	if !errors.Is(err, ErrEntryNotPending) {
		t.Fatalf("second finalize must return ErrEntryNotPending, got %v", err)
	}
	if repo.balance != 1000 {
		t.Errorf("second finalize must not refund again, got %d", repo.balance)
	}
}

func TestConfirmDepositIdempotent(t *testing.T) {
	repo := newFakeRepo(0)
	svc := NewService(repo)
	accountID := uuid.New()

	entry, err := svc.CreateDepositPending(context.Background(), accountID, 2500, "", nil)
	if err != nil {
		t.Fatalf("create deposit failed: %v", err)
	}
	if repo.balance != 0 {
		t.Fatalf("pending deposit must not credit, got %d", repo.balance)
	}

	balance, err := svc.ConfirmDeposit(context.Background(), entry.ID, nil)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if balance != 2500 {
		t.Errorf("expected balance 2500, got %d", balance)
	}

	balance, err = svc.ConfirmDeposit(context.Background(), entry.ID, nil)
	if err != nil {
		t.Fatalf("re-confirm must be a no-op, got %v", err)
	}
	if balance != 2500 {
		t.Errorf("re-confirm must not credit twice, got %d", balance)
	}
}

func TestRecentClampsN(t *testing.T) {
	repo := newFakeRepo(0)
	svc := NewService(repo)
	accountID := uuid.New()

	for i := 0; i < 10; i++ {
		repo.newEntry(accountID, 100, CategoryDeposit, StatusSuccess)
	}

	entries, err := svc.Recent(context.Background(), accountID, 200)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("out-of-range n must clamp to the default 5, got %d", len(entries))
	}
}

func TestDrift(t *testing.T) {
	repo := newFakeRepo(900)
	repo.sum = 1000
	svc := NewService(repo)

	drift, err := svc.Drift(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("drift failed: %v", err)
	}
	if drift != -100 {
		t.Errorf("expected drift -100, got %d", drift)
	}
}

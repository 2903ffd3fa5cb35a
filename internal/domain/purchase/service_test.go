package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/vtpass"
)

type fakeWallet struct {
	mu      sync.Mutex
	balance int64
	entries map[uuid.UUID]*wallet.LedgerEntry

	reserveCalls  int
	successCalls  int
	failureCalls  int
	lastReason    string
	lastVendorRef string
}

func newFakeWallet(balance int64) *fakeWallet {
	return &fakeWallet{balance: balance, entries: map[uuid.UUID]*wallet.LedgerEntry{}}
}

func (f *fakeWallet) Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category wallet.Category, desc string, meta wallet.Metadata) (*wallet.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserveCalls++
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	if f.balance < amount {
		return nil, wallet.ErrInsufficientBalance
	}
	f.balance -= amount
	entry := &wallet.LedgerEntry{
		ID:        uuid.New(),
		AccountID: accountID,
		Category:  category,
		Amount:    -amount,
		Status:    wallet.StatusPending,
		Metadata:  meta,
	}
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeWallet) FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra wallet.Metadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[entryID]
	if !ok {
		return wallet.ErrEntryNotFound
	}
	if entry.Status != wallet.StatusPending {
		return wallet.ErrEntryNotPending
	}
	entry.Status = wallet.StatusSuccess
	f.successCalls++
	f.lastVendorRef = vendorRef
	return nil
}

func (f *fakeWallet) FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[entryID]
	if !ok {
		return wallet.ErrEntryNotFound
	}
	if entry.Status != wallet.StatusPending {
		return wallet.ErrEntryNotPending
	}
	entry.Status = wallet.StatusFailed
	f.balance += -entry.Amount
	f.failureCalls++
	f.lastReason = reason
	return nil
}

func (f *fakeWallet) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

type fakeFulfiller struct {
	mu     sync.Mutex
	calls  int
	result *vtpass.PurchaseResult
	err    error
}

func (f *fakeFulfiller) Purchase(ctx context.Context, req vtpass.PurchaseRequest) (*vtpass.PurchaseResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &vtpass.PurchaseResult{Reference: "REF-" + req.RequestID[:8]}, nil
}

type fakeVerifier struct {
	calls int
	info  *vtpass.CustomerInfo
	err   error
}

func (f *fakeVerifier) VerifyCustomer(ctx context.Context, req vtpass.VerifyRequest) (*vtpass.CustomerInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.info != nil {
		return f.info, nil
	}
	return &vtpass.CustomerInfo{Name: "ADA OBI"}, nil
}

type fakePINs struct {
	err error
}

func (f *fakePINs) VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) error {
	return f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	succeeded int
	failed    int
}

func (f *fakeNotifier) PurchaseSucceeded(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, vendorRef string) {
	f.mu.Lock()
	f.succeeded++
	f.mu.Unlock()
}

func (f *fakeNotifier) PurchaseFailed(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, reason string) {
	f.mu.Lock()
	f.failed++
	f.mu.Unlock()
}

func newTestService(w *fakeWallet, ful *fakeFulfiller, ver *fakeVerifier, pins *fakePINs, not *fakeNotifier) *Service {
	return NewService(w, ful, ver, pins, not)
}

func airtimeInput(amount int64) Input {
	return Input{
		Category: wallet.CategoryAirtime,
		Amount:   amount,
		PIN:      "1234",
		Network:  "mtn",
		Phone:    "08012345678",
	}
}

func TestAirtimePurchaseSuccess(t *testing.T) {
	w := newFakeWallet(5000)
	ful := &fakeFulfiller{result: &vtpass.PurchaseResult{Reference: "VT-001"}}
	not := &fakeNotifier{}
	svc := newTestService(w, ful, &fakeVerifier{}, &fakePINs{}, not)

	res, err := svc.Purchase(context.Background(), uuid.New(), airtimeInput(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.VendorRef != "VT-001" {
		t.Errorf("expected vendor ref VT-001, got %s", res.VendorRef)
	}
	if res.NewBalance != 4500 {
		t.Errorf("expected balance 4500, got %d", res.NewBalance)
	}
	if w.successCalls != 1 || w.failureCalls != 0 {
		t.Errorf("expected one success finalize, got success=%d failure=%d", w.successCalls, w.failureCalls)
	}
	if not.succeeded != 1 {
		t.Errorf("expected success notification, got %d", not.succeeded)
	}
}

func TestPurchaseVendorDeclineRefunds(t *testing.T) {
	w := newFakeWallet(5000)
	ful := &fakeFulfiller{err: fmt.Errorf("%w: insufficient stock", vtpass.ErrDeclined)}
	not := &fakeNotifier{}
	svc := newTestService(w, ful, &fakeVerifier{}, &fakePINs{}, not)

	_, err := svc.Purchase(context.Background(), uuid.New(), airtimeInput(500))
	if !errors.Is(err, ErrFulfillmentFailed) {
		t.Fatalf("expected ErrFulfillmentFailed, got %v", err)
	}

	if balance, _ := w.Balance(context.Background(), uuid.Nil); balance != 5000 {
		t.Errorf("expected full refund to 5000, got %d", balance)
	}
	if w.failureCalls != 1 {
		t.Errorf("expected one failure finalize, got %d", w.failureCalls)
	}
	if w.lastReason != "insufficient stock" {
		t.Errorf("expected vendor message as reason, got %q", w.lastReason)
	}
	if not.failed != 1 {
		t.Errorf("expected failure notification, got %d", not.failed)
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	w := newFakeWallet(100)
	ful := &fakeFulfiller{}
	svc := newTestService(w, ful, &fakeVerifier{}, &fakePINs{}, &fakeNotifier{})

	_, err := svc.Purchase(context.Background(), uuid.New(), airtimeInput(500))
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if ful.calls != 0 {
		t.Errorf("fulfiller must not be called on a failed reserve, got %d calls", ful.calls)
	}
	if balance, _ := w.Balance(context.Background(), uuid.Nil); balance != 100 {
		t.Errorf("balance must be untouched, got %d", balance)
	}
}

func TestAirtimeAmountBounds(t *testing.T) {
	w := newFakeWallet(100000)
	svc := newTestService(w, &fakeFulfiller{}, &fakeVerifier{}, &fakePINs{}, &fakeNotifier{})

	for _, amount := range []int64{20, 60000} {
		_, err := svc.Purchase(context.Background(), uuid.New(), airtimeInput(amount))
		if !errors.Is(err, ErrAmountOutOfBounds) {
			t.Errorf("amount %d: expected ErrAmountOutOfBounds, got %v", amount, err)
		}
	}
	if w.reserveCalls != 0 {
		t.Errorf("nothing may be reserved on a bounds failure, got %d reserves", w.reserveCalls)
	}
}

func TestDataPurchaseSkipsBounds(t *testing.T) {
	w := newFakeWallet(200000)
	svc := newTestService(w, &fakeFulfiller{}, &fakeVerifier{}, &fakePINs{}, &fakeNotifier{})

	res, err := svc.Purchase(context.Background(), uuid.New(), Input{
		Category: wallet.CategoryData,
		Amount:   150000,
		Network:  "glo",
		Phone:    "08098765432",
		PlanID:   "glo-sme-100gb",
	})
	if err != nil {
		t.Fatalf("plan-priced purchase must skip fixed bounds: %v", err)
	}
	if res.Amount != 150000 {
		t.Errorf("expected amount 150000, got %d", res.Amount)
	}
}

func TestElectricityVerificationFailure(t *testing.T) {
	w := newFakeWallet(10000)
	ver := &fakeVerifier{err: fmt.Errorf("%w: invalid meter", vtpass.ErrDeclined)}
	svc := newTestService(w, &fakeFulfiller{}, ver, &fakePINs{}, &fakeNotifier{})

	_, err := svc.Purchase(context.Background(), uuid.New(), Input{
		Category:   wallet.CategoryElectricity,
		Amount:     2000,
		Provider:   "ikeja-electric",
		Identifier: "45700863561",
		MeterType:  "prepaid",
	})
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if w.reserveCalls != 0 {
		t.Errorf("nothing may be reserved before verification passes, got %d reserves", w.reserveCalls)
	}
}

func TestElectricityVerificationRuns(t *testing.T) {
	w := newFakeWallet(10000)
	ver := &fakeVerifier{info: &vtpass.CustomerInfo{Name: "NGOZI EZE", Address: "12 Allen Ave"}}
	ful := &fakeFulfiller{result: &vtpass.PurchaseResult{Reference: "VT-123", Token: "1234-5678-9012"}}
	svc := newTestService(w, ful, ver, &fakePINs{}, &fakeNotifier{})

	res, err := svc.Purchase(context.Background(), uuid.New(), Input{
		Category:   wallet.CategoryElectricity,
		Amount:     2000,
		Provider:   "ikeja-electric",
		Identifier: "45700863561",
		MeterType:  "prepaid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ver.calls != 1 {
		t.Errorf("expected one verification call, got %d", ver.calls)
	}
	if res.Token != "1234-5678-9012" {
		t.Errorf("expected token passed through, got %q", res.Token)
	}
}

func TestInvalidPINStopsPurchase(t *testing.T) {
	w := newFakeWallet(5000)
	svc := newTestService(w, &fakeFulfiller{}, &fakeVerifier{}, &fakePINs{err: ErrInvalidPIN}, &fakeNotifier{})

	_, err := svc.Purchase(context.Background(), uuid.New(), airtimeInput(500))
	if !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN, got %v", err)
	}
	if w.reserveCalls != 0 {
		t.Errorf("nothing may be reserved on a PIN failure, got %d reserves", w.reserveCalls)
	}
}

func TestUnsupportedCategory(t *testing.T) {
	svc := newTestService(newFakeWallet(5000), &fakeFulfiller{}, &fakeVerifier{}, &fakePINs{}, &fakeNotifier{})

	_, err := svc.Purchase(context.Background(), uuid.New(), Input{Category: wallet.CategoryDeposit, Amount: 100})
	if !errors.Is(err, ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}

func TestConcurrentPurchasesSingleWinner(t *testing.T) {
	w := newFakeWallet(1000)
	svc := newTestService(w, &fakeFulfiller{}, &fakeVerifier{}, &fakePINs{}, &fakeNotifier{})
	accountID := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, insufficient := 0, 0

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), accountID, airtimeInput(600))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, wallet.ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner, got success=%d insufficient=%d", success, insufficient)
	}
	if balance, _ := w.Balance(context.Background(), accountID); balance != 400 {
		t.Errorf("expected final balance 400, got %d", balance)
	}
}

package funding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/paystack"
)

const testSecret = "sk_test_secret"

type fakeGateway struct {
	initCalls   int
	verifyCalls int
	lastInit    paystack.InitializeRequest
	initErr     error
	verifyRes   *paystack.VerifyResponse
	verifyErr   error
}

func (f *fakeGateway) Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	f.initCalls++
	f.lastInit = req
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        req.Reference,
	}, nil
}

func (f *fakeGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResponse, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyRes, nil
}

type fakeWallet struct {
	balance int64
	entries map[uuid.UUID]*wallet.LedgerEntry

	createCalls  int
	confirmCalls int
	failCalls    int
	lastFailWhy  string
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{entries: map[uuid.UUID]*wallet.LedgerEntry{}}
}

func (f *fakeWallet) CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta wallet.Metadata) (*wallet.LedgerEntry, error) {
	f.createCalls++
	e := &wallet.LedgerEntry{
		ID:        uuid.New(),
		AccountID: accountID,
		Category:  wallet.CategoryDeposit,
		Amount:    amount,
		Status:    wallet.StatusPending,
	}
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakeWallet) ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra wallet.Metadata) (int64, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return 0, wallet.ErrEntryNotFound
	}
	if e.Status == wallet.StatusSuccess {
		return f.balance, nil
	}
	if e.Status != wallet.StatusPending {
		return 0, wallet.ErrEntryNotPending
	}
	f.confirmCalls++
	e.Status = wallet.StatusSuccess
	f.balance += e.Amount
	return f.balance, nil
}

func (f *fakeWallet) FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error {
	e, ok := f.entries[entryID]
	if !ok {
		return wallet.ErrEntryNotFound
	}
	if e.Status != wallet.StatusPending {
		return wallet.ErrEntryNotPending
	}
	f.failCalls++
	f.lastFailWhy = reason
	e.Status = wallet.StatusFailed
	return nil
}

func (f *fakeWallet) Entry(ctx context.Context, id uuid.UUID) (*wallet.LedgerEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, wallet.ErrEntryNotFound
	}
	return e, nil
}

type fakeAccounts struct{}

func (fakeAccounts) Email(ctx context.Context, accountID uuid.UUID) (string, error) {
	return "user@example.com", nil
}

type fakeNotifier struct {
	confirmed int
}

func (f *fakeNotifier) DepositConfirmed(ctx context.Context, accountID uuid.UUID, amount int64) {
	f.confirmed++
}

func newTestService(w *fakeWallet, g *fakeGateway, n *fakeNotifier) *Service {
	return NewService(w, g, fakeAccounts{}, n, testSecret, "https://app.example.com/wallet")
}

func webhookBody(reference string, amountKobo int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s","status":"success","amount":%d,"channel":"card"}}`,
		reference, amountKobo))
}

func TestInitializeBelowMinimum(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	svc := newTestService(w, g, &fakeNotifier{})

	_, err := svc.Initialize(context.Background(), uuid.New(), MinDeposit-1)
	if !errors.Is(err, ErrDepositTooSmall) {
		t.Fatalf("expected ErrDepositTooSmall, got %v", err)
	}
	if w.createCalls != 0 || g.initCalls != 0 {
		t.Error("no deposit or gateway call must happen below the minimum")
	}
}

func TestInitializeConvertsToKobo(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	svc := newTestService(w, g, &fakeNotifier{})

	session, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	if g.lastInit.AmountKobo != 250000 {
		t.Errorf("expected 250000 kobo, got %d", g.lastInit.AmountKobo)
	}
	if g.lastInit.Reference != session.Reference.String() {
		t.Errorf("gateway reference must be the entry ID, got %q", g.lastInit.Reference)
	}
	if session.AuthorizationURL == "" {
		t.Error("expected a checkout URL")
	}
	entry, _ := w.Entry(context.Background(), session.Reference)
	if entry == nil || entry.Status != wallet.StatusPending {
		t.Error("deposit must be created pending")
	}
}

func TestInitializeGatewayFailureFailsDeposit(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{initErr: errors.New("connection refused")}
	svc := newTestService(w, g, &fakeNotifier{})

	_, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if !errors.Is(err, ErrGatewayFailed) {
		t.Fatalf("expected ErrGatewayFailed, got %v", err)
	}
	if w.failCalls != 1 {
		t.Errorf("pending deposit must be failed, got %d fail calls", w.failCalls)
	}
	if w.balance != 0 {
		t.Errorf("balance must stay untouched, got %d", w.balance)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	w := newFakeWallet()
	svc := newTestService(w, &fakeGateway{}, &fakeNotifier{})

	body := webhookBody(uuid.New().String(), 250000)
	err := svc.HandleWebhook(context.Background(), body, paystack.Sign(body, "wrong-secret"))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if w.confirmCalls != 0 {
		t.Error("no credit on a bad signature")
	}
}

func TestWebhookConfirmsDeposit(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	notifier := &fakeNotifier{}
	svc := newTestService(w, g, notifier)

	session, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	body := webhookBody(session.Reference.String(), 250000)
	if err := svc.HandleWebhook(context.Background(), body, paystack.Sign(body, testSecret)); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if w.balance != 2500 {
		t.Errorf("expected balance 2500, got %d", w.balance)
	}
	if w.confirmCalls != 1 {
		t.Errorf("expected one confirmation, got %d", w.confirmCalls)
	}
	if notifier.confirmed != 1 {
		t.Errorf("expected one notification, got %d", notifier.confirmed)
	}
}

func TestWebhookRedeliveryCreditsOnce(t *testing.T) {
	w := newFakeWallet()
	notifier := &fakeNotifier{}
	svc := newTestService(w, &fakeGateway{}, notifier)

	session, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	body := webhookBody(session.Reference.String(), 250000)
	sig := paystack.Sign(body, testSecret)
	for i := 0; i < 3; i++ {
		if err := svc.HandleWebhook(context.Background(), body, sig); err != nil {
			t.Fatalf("delivery %d failed: %v", i+1, err)
		}
	}

	if w.balance != 2500 {
		t.Errorf("redelivery must not credit twice, got balance %d", w.balance)
	}
	if w.confirmCalls != 1 {
		t.Errorf("expected one confirmation, got %d", w.confirmCalls)
	}
	if notifier.confirmed != 1 {
		t.Errorf("redelivery must not notify twice, got %d", notifier.confirmed)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	w := newFakeWallet()
	svc := newTestService(w, &fakeGateway{}, &fakeNotifier{})

	body := []byte(`{"event":"transfer.success","data":{"reference":"ignored","amount":1000}}`)
	if err := svc.HandleWebhook(context.Background(), body, paystack.Sign(body, testSecret)); err != nil {
		t.Fatalf("unrelated events must be ignored, got %v", err)
	}
	if w.confirmCalls != 0 {
		t.Error("unrelated events must not credit")
	}
}

func TestWebhookUnknownReference(t *testing.T) {
	w := newFakeWallet()
	svc := newTestService(w, &fakeGateway{}, &fakeNotifier{})

	body := webhookBody("not-a-uuid", 250000)
	err := svc.HandleWebhook(context.Background(), body, paystack.Sign(body, testSecret))
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestWebhookAmountMismatchFailsDeposit(t *testing.T) {
	w := newFakeWallet()
	svc := newTestService(w, &fakeGateway{}, &fakeNotifier{})

	session, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// Charged 1000 naira against a 2500 naira deposit.
	body := webhookBody(session.Reference.String(), 100000)
	if err := svc.HandleWebhook(context.Background(), body, paystack.Sign(body, testSecret)); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if w.confirmCalls != 0 {
		t.Error("short payment must not credit")
	}
	if w.failCalls != 1 {
		t.Errorf("short payment must fail the deposit, got %d fail calls", w.failCalls)
	}
	if w.lastFailWhy != "amount mismatch: charged 1000, expected 2500" {
		t.Errorf("unexpected failure reason %q", w.lastFailWhy)
	}
}

func TestVerifyDepositSettles(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	svc := newTestService(w, g, &fakeNotifier{})
	accountID := uuid.New()

	session, err := svc.Initialize(context.Background(), accountID, 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	g.verifyRes = &paystack.VerifyResponse{
		Status:     "success",
		Reference:  session.Reference.String(),
		AmountKobo: 250000,
		Channel:    "card",
	}

	entry, err := svc.VerifyDeposit(context.Background(), accountID, session.Reference)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if entry.Status != wallet.StatusSuccess {
		t.Errorf("expected success, got %s", entry.Status)
	}
	if w.balance != 2500 {
		t.Errorf("expected balance 2500, got %d", w.balance)
	}
}

func TestVerifyDepositAbandoned(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	svc := newTestService(w, g, &fakeNotifier{})
	accountID := uuid.New()

	session, err := svc.Initialize(context.Background(), accountID, 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	g.verifyRes = &paystack.VerifyResponse{Status: "abandoned"}

	entry, err := svc.VerifyDeposit(context.Background(), accountID, session.Reference)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if entry.Status != wallet.StatusFailed {
		t.Errorf("expected failed, got %s", entry.Status)
	}
	if w.balance != 0 {
		t.Errorf("abandoned deposit must not credit, got %d", w.balance)
	}
}

func TestVerifyDepositOwnership(t *testing.T) {
	w := newFakeWallet()
	svc := newTestService(w, &fakeGateway{}, &fakeNotifier{})

	session, err := svc.Initialize(context.Background(), uuid.New(), 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	_, err = svc.VerifyDeposit(context.Background(), uuid.New(), session.Reference)
	if !errors.Is(err, wallet.ErrEntryNotFound) {
		t.Fatalf("another account's deposit must read as not found, got %v", err)
	}
}

func TestVerifyDepositTerminalShortCircuits(t *testing.T) {
	w := newFakeWallet()
	g := &fakeGateway{}
	svc := newTestService(w, g, &fakeNotifier{})
	accountID := uuid.New()

	session, err := svc.Initialize(context.Background(), accountID, 2500)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := w.ConfirmDeposit(context.Background(), session.Reference, nil); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	entry, err := svc.VerifyDeposit(context.Background(), accountID, session.Reference)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if entry.Status != wallet.StatusSuccess {
		t.Errorf("expected success, got %s", entry.Status)
	}
	if g.verifyCalls != 0 {
		t.Error("terminal deposits must not hit the gateway")
	}
}

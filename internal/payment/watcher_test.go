package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fotomagic/internal/domain"
	"fotomagic/internal/tasks"
)

type fakeChecker struct {
	mu          sync.Mutex
	cardCalls   int
	cryptoCalls int
	paidAfter   int // report paid on the nth check; 0 means never
}

func (c *fakeChecker) CheckCardPayment(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cardCalls++
	return c.paidAfter > 0 && c.cardCalls >= c.paidAfter, nil
}

func (c *fakeChecker) CheckCryptoPayment(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cryptoCalls++
	return c.paidAfter > 0 && c.cryptoCalls >= c.paidAfter, nil
}

func (c *fakeChecker) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardCalls + c.cryptoCalls
}

type fakeStore struct {
	mu   sync.Mutex
	user *domain.User
	ops  []string
}

func (s *fakeStore) record(op string) {
	s.mu.Lock()
	s.ops = append(s.ops, op)
	s.mu.Unlock()
}

func (s *fakeStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, domain.ErrNotFound
	}
	u := *s.user
	return &u, nil
}

func (s *fakeStore) IncrementUserValue(ctx context.Context, id int64, field domain.BalanceField, delta int) error {
	s.record(fmt.Sprintf("increment:%d:%s:%d", id, field, delta))
	return nil
}

func (s *fakeStore) AddIncome(ctx context.Context, amount int) error {
	s.record(fmt.Sprintf("income:%d", amount))
	return nil
}

func (s *fakeStore) UpdateDeeplinkEarn(ctx context.Context, link string, amount int) error {
	s.record(fmt.Sprintf("deeplink:%s:%d", link, amount))
	return nil
}

func (s *fakeStore) SetActive(ctx context.Context, id int64, active bool) error {
	s.record(fmt.Sprintf("active:%d:%v", id, active))
	return nil
}

func (s *fakeStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (n *fakeNotifier) SendMessage(ctx context.Context, userID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTestWatcher(checker domain.PaymentChecker, store domain.Storage, notifier domain.Notifier) (*Watcher, *tasks.Registry) {
	logger := zerolog.Nop()
	registry := tasks.NewRegistry(logger)
	return NewWatcher(registry, checker, store, notifier, logger), registry
}

func testWatch(userID int64) domain.PaymentWatch {
	return domain.PaymentWatch{
		PaymentID: "pay-1",
		UserID:    userID,
		Amount:    10,
		Cost:      399,
		Kind:      domain.RateRestore,
		Channel:   domain.PaymentChannelCard,
		Interval:  3 * time.Millisecond,
		Deadline:  500 * time.Millisecond,
	}
}

func TestWatcherSettlementOrder(t *testing.T) {
	referrer := int64(500)
	checker := &fakeChecker{paidAfter: 1}
	store := &fakeStore{user: &domain.User{ID: 42, ReferrerID: &referrer, DeeplinkTag: "promo"}}
	notifier := &fakeNotifier{}
	w, registry := newTestWatcher(checker, store, notifier)

	watch := testWatch(42)
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	want := []string{
		"income:399",
		"deeplink:promo:399",
		"increment:500:animates:1",
		"increment:500:animates_earned:1",
		"increment:42:restores:10",
	}
	got := store.snapshot()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	sent := notifier.sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "10 реставраций") {
		t.Fatalf("notification = %v", sent)
	}
}

func TestWatcherNoReferrerNoBonus(t *testing.T) {
	checker := &fakeChecker{paidAfter: 1}
	store := &fakeStore{user: &domain.User{ID: 42}}
	w, registry := newTestWatcher(checker, store, &fakeNotifier{})

	watch := testWatch(42)
	watch.Kind = domain.RateAnimate
	watch.Amount = 3
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	for _, op := range store.snapshot() {
		if strings.HasPrefix(op, "increment:") && !strings.HasPrefix(op, "increment:42:") {
			t.Fatalf("unexpected referral op %q", op)
		}
		if op == "increment:42:animates:3" {
			return
		}
	}
	t.Fatalf("payer was not credited: %v", store.snapshot())
}

func TestWatcherTimeoutIsSilent(t *testing.T) {
	checker := &fakeChecker{} // never paid
	store := &fakeStore{user: &domain.User{ID: 42}}
	notifier := &fakeNotifier{}
	w, registry := newTestWatcher(checker, store, notifier)

	watch := testWatch(42)
	watch.Deadline = 20 * time.Millisecond
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	if ops := store.snapshot(); len(ops) != 0 {
		t.Fatalf("timeout applied effects: %v", ops)
	}
	if sent := notifier.sent(); len(sent) != 0 {
		t.Fatalf("timeout notified the user: %v", sent)
	}
}

func TestWatcherWaitsBeforeFirstCheck(t *testing.T) {
	checker := &fakeChecker{paidAfter: 3}
	store := &fakeStore{user: &domain.User{ID: 42}}
	w, registry := newTestWatcher(checker, store, &fakeNotifier{})

	watch := testWatch(42)
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	if calls := checker.calls(); calls != 3 {
		t.Fatalf("checks = %d, want 3", calls)
	}
	if len(store.snapshot()) == 0 {
		t.Fatal("payment never settled")
	}
}

func TestWatcherNotifyFailureDeactivatesUser(t *testing.T) {
	checker := &fakeChecker{paidAfter: 1}
	store := &fakeStore{user: &domain.User{ID: 42}}
	notifier := &fakeNotifier{err: errors.New("forbidden: bot was blocked by the user")}
	w, registry := newTestWatcher(checker, store, notifier)

	watch := testWatch(42)
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	ops := store.snapshot()
	if len(ops) == 0 || ops[len(ops)-1] != "active:42:false" {
		t.Fatalf("ops = %v, want trailing deactivation", ops)
	}
}

func TestWatcherCancelStopsWithoutEffects(t *testing.T) {
	checker := &fakeChecker{paidAfter: 50}
	store := &fakeStore{user: &domain.User{ID: 42}}
	w, registry := newTestWatcher(checker, store, &fakeNotifier{})

	watch := testWatch(42)
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return checker.calls() >= 1 })

	if !w.CancelForUser(42) {
		t.Fatal("CancelForUser reported no live watch")
	}
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	if ops := store.snapshot(); len(ops) != 0 {
		t.Fatalf("canceled watch applied effects: %v", ops)
	}
}

func TestWatcherCryptoChannelUsesCryptoChecker(t *testing.T) {
	checker := &fakeChecker{paidAfter: 1}
	store := &fakeStore{user: &domain.User{ID: 42}}
	w, registry := newTestWatcher(checker, store, &fakeNotifier{})

	watch := testWatch(42)
	watch.Channel = domain.PaymentChannelCrypto
	w.Start(context.Background(), watch)
	waitFor(t, func() bool { return !registry.Has(watch.TaskKey()) })

	checker.mu.Lock()
	defer checker.mu.Unlock()
	if checker.cardCalls != 0 || checker.cryptoCalls == 0 {
		t.Fatalf("card=%d crypto=%d, want crypto only", checker.cardCalls, checker.cryptoCalls)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

type fixture struct {
	clock       *clockwork.FakeClock
	users       *repository.UserRepository
	stats       *store.StatsStore
	membership  *repository.MembershipRepository
	txs         *repository.TransactionRepository
	auth        *AuthService
	withdrawals *WithdrawalService
	admin       *AdminService
}

type loginCounter map[string]int

func (c loginCounter) RecordLogin(_ context.Context, userID string) error {
	c[userID]++
	return nil
}

func newFixture(t *testing.T, logins LoginRecorder) *fixture {
	t.Helper()
	return newFixtureOn(t, logins, kv.NewMemory())
}

func newFixtureOn(t *testing.T, logins LoginRecorder, db kv.Store) *fixture {
	t.Helper()
	InitJWT("test-secret")
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC))
	f := &fixture{
		clock:      clock,
		users:      repository.NewUserRepository(db),
		membership: repository.NewMembershipRepository(db, clock),
		txs:        repository.NewTransactionRepository(db),
	}
	f.stats = store.New(f.users)
	f.auth = NewAuthService(f.users, logins).WithHashCost(bcrypt.MinCost).WithClock(clock)
	f.withdrawals = NewWithdrawalService(f.stats, repository.NewWithdrawalRepository(db), f.txs, clock)
	f.admin = NewAdminService(f.users, f.stats, f.membership, f.withdrawals, f.txs, clock)
	return f
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")
	token, err := GenerateJWT("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ParseJWT(token)
	if err != nil || id != "user-1" {
		t.Fatalf("parse = %q, %v", id, err)
	}

	if _, err := ParseJWT(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, _ := expired.SignedString(jwtSecret)
	if _, err := ParseJWT(signed); err == nil {
		t.Fatal("expired token accepted")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1"})
	signed, _ = noExp.SignedString(jwtSecret)
	if _, err := ParseJWT(signed); err == nil {
		t.Fatal("token without exp accepted")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	logins := loginCounter{}
	f := newFixture(t, logins)
	ctx := context.Background()

	sess, err := f.auth.Register(ctx, "Robo", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Token == "" || sess.User.Username != "Robo" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Stats.TapsLeft != 100 || sess.Stats.RobotPower != 10 || sess.Stats.DailyBonus != 50 {
		t.Fatalf("initial stats = %+v", sess.Stats)
	}

	if _, err := f.auth.Register(ctx, "robo", "another"); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("duplicate err = %v", err)
	}

	again, err := f.auth.Login(ctx, "ROBO", "secret1")
	if err != nil || again.User.ID != sess.User.ID {
		t.Fatalf("login = %+v, %v", again, err)
	}
	if _, err := f.auth.Login(ctx, "robo", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := f.auth.Login(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}
	if logins[sess.User.ID] != 2 {
		t.Fatalf("logins = %d; want 2", logins[sess.User.ID])
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		user, pass string
		want       error
	}{
		{"ab", "secret1", ErrInvalidUsername},
		{"   ", "secret1", ErrInvalidUsername},
		{"robot", "123", ErrWeakPassword},
	}
	for _, tt := range tests {
		if _, err := f.auth.Register(context.Background(), tt.user, tt.pass); !errors.Is(err, tt.want) {
			t.Errorf("Register(%q) err = %v; want %v", tt.user, err, tt.want)
		}
	}
}

func (f *fixture) player(t *testing.T, coins int64) string {
	t.Helper()
	sess, err := f.auth.Register(context.Background(), "player", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.stats.Patch(context.Background(), sess.User.ID, domain.StatsPatch{Coins: domain.Int64(coins)}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	return sess.User.ID
}

func TestWithdrawalLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	uid := f.player(t, 250000)

	if _, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 99999, Destination: "card"}); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("below minimum err = %v", err)
	}
	if _, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 300000, Destination: "card"}); !errors.Is(err, economy.ErrInsufficientFunds) {
		t.Fatalf("insufficient err = %v", err)
	}

	w1, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 100000, Destination: "card"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	w2, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 120000, Destination: "card"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if st, _ := f.stats.Get(ctx, uid); st.Coins != 30000 {
		t.Fatalf("coins after requests = %d", st.Coins)
	}

	if _, err := f.withdrawals.Cancel(ctx, "someone-else", w1.ID); !errors.Is(err, ErrWithdrawalNotOwned) {
		t.Fatalf("foreign cancel err = %v", err)
	}
	if _, err := f.withdrawals.Cancel(ctx, uid, w1.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.withdrawals.Cancel(ctx, uid, w1.ID); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("double cancel err = %v", err)
	}

	approved, err := f.admin.ApproveWithdrawal(ctx, w2.ID, "paid")
	if err != nil || approved.Status != domain.WithdrawalStatusApproved || approved.ProcessedAt == nil {
		t.Fatalf("approve = %+v, %v", approved, err)
	}
	if _, err := f.admin.RejectWithdrawal(ctx, w2.ID, "late"); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("reject approved err = %v", err)
	}

	st, _ := f.stats.Get(ctx, uid)
	if st.Coins != 130000 {
		t.Fatalf("coins = %d; want 130000 (cancel refunded, approval kept)", st.Coins)
	}

	list, err := f.withdrawals.List(ctx, uid, 10)
	if err != nil || len(list) != 2 || list[0].ID != w2.ID {
		t.Fatalf("list = %+v, %v", list, err)
	}
}

func TestRejectRefunds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	uid := f.player(t, 100000)

	w, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 100000, Destination: "card"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	pending, _ := f.admin.GetPendingWithdrawals(ctx)
	if len(pending) != 1 {
		t.Fatalf("pending = %d", len(pending))
	}
	rejected, err := f.admin.RejectWithdrawal(ctx, w.ID, "bad destination")
	if err != nil || rejected.Status != domain.WithdrawalStatusRejected || rejected.AdminNotes != "bad destination" {
		t.Fatalf("reject = %+v, %v", rejected, err)
	}
	if st, _ := f.stats.Get(ctx, uid); st.Coins != 100000 || st.TotalEarned != 0 {
		t.Fatalf("stats after refund = %+v", st)
	}
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	uid := f.player(t, 10)

	bal, err := f.admin.AddUserCoins(ctx, uid, 990)
	if err != nil || bal != 1000 {
		t.Fatalf("add coins = %d, %v", bal, err)
	}
	if _, err := f.admin.AddUserCoins(ctx, uid, -2000); !errors.Is(err, economy.ErrInsufficientFunds) {
		t.Fatalf("overdraw err = %v", err)
	}

	m, err := f.admin.SetMembership(ctx, uid, domain.Membership{VIP: true})
	if err != nil || !m.VIP || m.UpdatedAt == nil {
		t.Fatalf("membership = %+v, %v", m, err)
	}
	if _, err := f.admin.SetMembership(ctx, "ghost", domain.Membership{VIP: true}); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("ghost membership err = %v", err)
	}

	info, err := f.admin.GetUser(ctx, "player")
	if err != nil || info.ID != uid || !info.Membership.VIP || info.Stats.Coins != 1000 || len(info.Recent) != 1 {
		t.Fatalf("user info = %+v, %v", info, err)
	}

	stats, err := f.admin.GetStats(ctx)
	if err != nil || stats.TotalUsers != 1 || stats.VIPUsers != 1 || stats.TotalCoins != 1000 {
		t.Fatalf("stats = %+v, %v", stats, err)
	}
}

func TestAdminStatsFollowInjectedClock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	uid := f.player(t, 0)

	m, err := f.admin.SetMembership(ctx, uid, domain.Membership{UnlimitedEnergy: true})
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if m.UpdatedAt == nil || !m.UpdatedAt.Equal(f.clock.Now()) {
		t.Fatalf("updated_at = %v; want %v", m.UpdatedAt, f.clock.Now())
	}

	stats, err := f.admin.GetStats(ctx)
	if err != nil || stats.NewUsersToday != 1 || stats.UnlimitedUsers != 1 {
		t.Fatalf("stats today = %+v, %v", stats, err)
	}

	f.clock.Advance(24 * time.Hour)
	stats, err = f.admin.GetStats(ctx)
	if err != nil || stats.NewUsersToday != 0 || stats.TotalUsers != 1 {
		t.Fatalf("stats next day = %+v, %v", stats, err)
	}
}

func TestConcurrentAdminAdjustmentsKeepEveryLogEntry(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	uid := f.player(t, 0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.admin.AddUserCoins(ctx, uid, 10); err != nil {
				t.Errorf("add coins: %v", err)
			}
		}()
	}
	wg.Wait()

	if st, _ := f.stats.Get(ctx, uid); st.Coins != n*10 {
		t.Fatalf("coins = %d; want %d", st.Coins, n*10)
	}
	log, err := f.txs.GetByUserID(ctx, uid, 1000)
	if err != nil || len(log) != n {
		t.Fatalf("log = %d entries, %v; want %d", len(log), err, n)
	}
}

var errWriteFailed = errors.New("write failed")

type failingKV struct {
	kv.Store
	mu     sync.Mutex
	prefix string
}

func (f *failingKV) failOn(prefix string) {
	f.mu.Lock()
	f.prefix = prefix
	f.mu.Unlock()
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	prefix := f.prefix
	f.mu.Unlock()
	if prefix != "" && strings.HasPrefix(key, prefix) {
		return errWriteFailed
	}
	return f.Store.Set(ctx, key, value)
}

func TestWithdrawalRequestRefundsWhenRecordFails(t *testing.T) {
	db := &failingKV{Store: kv.NewMemory()}
	f := newFixtureOn(t, nil, db)
	ctx := context.Background()
	uid := f.player(t, 150000)

	db.failOn("withdrawal:")
	if _, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 100000, Destination: "card"}); !errors.Is(err, errWriteFailed) {
		t.Fatalf("err = %v; want errWriteFailed", err)
	}
	if st, _ := f.stats.Get(ctx, uid); st.Coins != 150000 {
		t.Fatalf("coins = %d; want 150000", st.Coins)
	}
	db.failOn("")
	if pending, _ := f.withdrawals.Pending(ctx); len(pending) != 0 {
		t.Fatalf("pending = %+v", pending)
	}
	if list, _ := f.withdrawals.List(ctx, uid, 10); len(list) != 0 {
		t.Fatalf("list = %+v", list)
	}
}

func TestWithdrawalStaysPendingWhenRefundSaveFails(t *testing.T) {
	db := &failingKV{Store: kv.NewMemory()}
	f := newFixtureOn(t, nil, db)
	ctx := context.Background()
	uid := f.player(t, 100000)

	w, err := f.withdrawals.Request(ctx, uid, domain.WithdrawRequest{Coins: 100000, Destination: "card"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	db.failOn("user:")
	if _, err := f.admin.RejectWithdrawal(ctx, w.ID, "no"); !errors.Is(err, errWriteFailed) {
		t.Fatalf("reject err = %v; want errWriteFailed", err)
	}
	db.failOn("")

	got, err := f.withdrawals.List(ctx, uid, 1)
	if err != nil || len(got) != 1 || got[0].Status != domain.WithdrawalStatusPending {
		t.Fatalf("withdrawal after failed refund = %+v, %v", got, err)
	}
	if _, err := f.admin.RejectWithdrawal(ctx, w.ID, "no"); err != nil {
		t.Fatalf("retry reject: %v", err)
	}
	if st, _ := f.stats.Get(ctx, uid); st.Coins != 100000 {
		t.Fatalf("coins = %d; want 100000", st.Coins)
	}
}

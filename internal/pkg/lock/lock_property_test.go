package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"discord-economy-bot/internal/model"
)

func drawKey(t *rapid.T, label string) model.AccountKey {
	return model.AccountKey{
		UserID:      rapid.Int64Range(1, 1_000_000).Draw(t, label+"_user"),
		CommunityID: rapid.Int64Range(1, 1_000).Draw(t, label+"_community"),
	}
}

// Concurrent read-modify-write under the lock matches sequential execution.
func TestConcurrentReadModifyWriteProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 100_000).Draw(t, "initial")
		deltas := rapid.SliceOfN(rapid.Int64Range(-500, 500), 2, 30).Draw(t, "deltas")
		key := drawKey(t, "account")

		al := NewAccountLock()
		balance := initial
		expected := initial
		for _, d := range deltas {
			expected += d
		}

		var wg sync.WaitGroup
		wg.Add(len(deltas))
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				al.Lock(key)
				defer al.Unlock(key)
				balance += delta
			}(d)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance = %d, want %d", balance, expected)
		}
	})
}

// The same user in two communities holds two independent locks.
func TestCommunitiesAreIndependentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		user := rapid.Int64Range(1, 1_000_000).Draw(t, "user")
		a := rapid.Int64Range(1, 500).Draw(t, "communityA")
		b := rapid.Int64Range(501, 1_000).Draw(t, "communityB")

		al := NewAccountLock()
		keyA := model.AccountKey{UserID: user, CommunityID: a}
		keyB := model.AccountKey{UserID: user, CommunityID: b}

		al.Lock(keyA)
		if !al.TryLock(keyB) {
			t.Fatalf("lock on %v blocked %v", keyA, keyB)
		}
		if al.TryLock(keyA) {
			t.Fatalf("TryLock succeeded on a held lock")
		}
		al.Unlock(keyB)
		al.Unlock(keyA)

		if al.IsLocked(keyA) || al.IsLocked(keyB) {
			t.Fatalf("locks still held after unlock")
		}
	})
}

// Only one of N concurrent TryLock calls wins.
func TestTryLockSingleWinnerProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 20).Draw(t, "n")
		key := drawKey(t, "account")
		al := NewAccountLock()

		var winners atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				<-start
				if al.TryLock(key) {
					winners.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if winners.Load() != 1 {
			t.Fatalf("winners = %d, want 1", winners.Load())
		}
	})
}

func TestWithLock_PropagatesError(t *testing.T) {
	al := NewAccountLock()
	key := model.AccountKey{UserID: 1, CommunityID: 2}
	wantErr := assert.AnError

	err := al.WithLock(key, func() error {
		assert.True(t, al.IsLocked(key))
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.False(t, al.IsLocked(key))
}

func TestWithLockContext_Timeout(t *testing.T) {
	al := NewAccountLock()
	key := model.AccountKey{UserID: 1, CommunityID: 2}

	al.Lock(key)
	called := false
	err := al.WithLockContext(context.Background(), key, 20*time.Millisecond, func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrLockTimeout)
	assert.False(t, called)

	al.Unlock(key)
	// the abandoned waiter releases the lock again
	assert.Eventually(t, func() bool { return !al.IsLocked(key) }, time.Second, 5*time.Millisecond)

	err = al.WithLockContext(context.Background(), key, time.Second, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithLockContext_CancelledContext(t *testing.T) {
	al := NewAccountLock()
	key := model.AccountKey{UserID: 3, CommunityID: 4}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := al.WithLockContext(ctx, key, time.Second, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, al.IsLocked(key))
}

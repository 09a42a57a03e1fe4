// Package lock serializes actions of a single account.
// Balances are protected by the database; the lock only keeps one player
// from running two game actions at the same time.
package lock

import (
	"context"
	"sync"
	"time"

	"discord-economy-bot/internal/model"
)

// AccountLock hands out one mutex per (user, community) account.
type AccountLock struct {
	locks sync.Map // map[model.AccountKey]*sync.Mutex
}

// NewAccountLock creates a new AccountLock instance.
func NewAccountLock() *AccountLock {
	return &AccountLock{}
}

func (al *AccountLock) mutex(key model.AccountKey) *sync.Mutex {
	if v, ok := al.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := al.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for an account.
func (al *AccountLock) Lock(key model.AccountKey) {
	al.mutex(key).Lock()
}

// Unlock releases the lock for an account.
func (al *AccountLock) Unlock(key model.AccountKey) {
	if v, ok := al.locks.Load(key); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (al *AccountLock) TryLock(key model.AccountKey) bool {
	return al.mutex(key).TryLock()
}

// LockWithTimeout waits at most timeout for the lock.
// Returns false if the lock was not acquired.
func (al *AccountLock) LockWithTimeout(ctx context.Context, key model.AccountKey, timeout time.Duration) bool {
	mu := al.mutex(key)
	if mu.TryLock() {
		return true
	}

	done := make(chan struct{})
	go func() {
		mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		return true
	case <-timeoutCtx.Done():
		// the waiter still acquires eventually; hand the lock straight back
		go func() {
			<-done
			mu.Unlock()
		}()
		return false
	}
}

// WithLock executes fn while holding the account's lock.
func (al *AccountLock) WithLock(key model.AccountKey, fn func() error) error {
	al.Lock(key)
	defer al.Unlock(key)
	return fn()
}

// WithLockContext is WithLock bounded by timeout and ctx.
func (al *AccountLock) WithLockContext(ctx context.Context, key model.AccountKey, timeout time.Duration, fn func() error) error {
	if !al.LockWithTimeout(ctx, key, timeout) {
		return ErrLockTimeout
	}
	defer al.Unlock(key)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// IsLocked is a point-in-time check.
func (al *AccountLock) IsLocked(key model.AccountKey) bool {
	v, ok := al.locks.Load(key)
	if !ok {
		return false
	}
	mu := v.(*sync.Mutex)
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}

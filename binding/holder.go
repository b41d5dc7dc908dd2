package binding

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// Lifetime describes how a native value's ownership is taken and given back.
//
// Retain runs when a Holder takes ownership; nil means the holder adopts the
// reference the caller already has. Release runs exactly once when the
// holder is released.
type Lifetime[T any] struct {
	Retain  func(T)
	Release func(T) error
}

// owners maps each native value to its live destructive Holder.
var owners sync.Map

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for release failures and registration
// events. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func logs() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Holder owns one native value on behalf of the host.
//
// At most one live Holder exists per native value. The value is released
// exactly once, by an explicit Release or by the host's collector.
type Holder[T comparable] struct {
	value    T
	lifetime Lifetime[T]
	released atomic.Bool
}

// Acquire takes ownership of v. It panics with ErrAlreadyOwned if v already
// has a live Holder; use [TryAcquire] to fall back to a borrow instead.
func Acquire[T comparable](v T, lifetime Lifetime[T]) *Holder[T] {
	h, ok := TryAcquire(v, lifetime)
	if !ok {
		panic(errorc.With(errors.ErrAlreadyOwned, errorc.String(errors.FieldTypeName, fmt.Sprintf("%T", v))))
	}
	return h
}

// TryAcquire takes ownership of v unless v already has a live Holder, in
// which case it returns false. A panic in lifetime.Retain leaves v unowned.
func TryAcquire[T comparable](v T, lifetime Lifetime[T]) (*Holder[T], bool) {
	var zero T
	if v == zero {
		panic(fmt.Sprintf("binding: Acquire of zero %T", v))
	}
	h := &Holder[T]{value: v, lifetime: lifetime}
	if _, loaded := owners.LoadOrStore(any(v), h); loaded {
		return nil, false
	}
	if lifetime.Retain != nil {
		retained := false
		defer func() {
			if !retained {
				owners.CompareAndDelete(any(v), h)
			}
		}()
		lifetime.Retain(v)
		retained = true
	}
	return h, true
}

// Owned reports whether v currently has a live Holder.
func Owned(v any) bool {
	_, ok := owners.Load(v)
	return ok
}

// Get returns the native value. It panics with ErrReleased after Release.
func (h *Holder[T]) Get() T {
	if h.released.Load() {
		panic(errorc.With(errors.ErrReleased, errorc.String(errors.FieldTypeName, fmt.Sprintf("%T", h.value))))
	}
	return h.value
}

// Value returns the native value as any. It panics after Release.
func (h *Holder[T]) Value() any { return h.Get() }

// Released reports whether the holder has been released.
func (h *Holder[T]) Released() bool { return h.released.Load() }

// Release gives the native value back. Only the first call has an effect.
// It is safe to call from any goroutine; errors and panics of the release
// hook are logged, never propagated.
func (h *Holder[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	owners.CompareAndDelete(any(h.value), h)
	if h.lifetime.Release == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logs().Warn("release hook panicked", "type", fmt.Sprintf("%T", h.value), "panic", r)
		}
	}()
	if err := h.lifetime.Release(h.value); err != nil {
		logs().Warn("release failed", "type", fmt.Sprintf("%T", h.value), "error", err)
	}
}

// Borrowed is a non-owning view of a native value. Its Release does nothing.
type Borrowed[T any] struct {
	value T
}

// Borrow returns a non-owning view of v.
func Borrow[T any](v T) *Borrowed[T] { return &Borrowed[T]{value: v} }

// Get returns the borrowed value.
func (b *Borrowed[T]) Get() T { return b.value }

// Value returns the borrowed value as any.
func (b *Borrowed[T]) Value() any { return b.value }

// Release does nothing; the value belongs to someone else.
func (b *Borrowed[T]) Release() {}

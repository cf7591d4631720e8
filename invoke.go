package breaker

import (
	"context"
	"fmt"
)

// Invoke calls b and type-asserts the result to T, so callers whose Subject
// always returns one concrete type don't have to unwrap `any` at every call
// site. It returns the zero value of T alongside any error Call produces,
// and also if the Subject's result does not assert to T (a programmer
// error — the Subject and the Invoke call site have disagreed on the
// return type).
//
// A generic Breaker[T] was considered and rejected (SPEC_FULL.md §9): it
// would force one breaker type per return type sharing a key across
// processes with potentially different binaries, which the reference
// design never required — the shared state is just three scalars, agnostic
// to what the subject returns.
func Invoke[T any](ctx context.Context, b *Breaker, args ...any) (T, error) {
	var zero T

	result, err := b.Call(ctx, args...)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("breaker: subject for key %q returned %T, not %T", b.key, result, zero)
	}
	return typed, nil
}

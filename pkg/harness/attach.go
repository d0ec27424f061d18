package harness

import (
	"context"
	"testing"

	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// Attach brings scope up for the duration of t and registers its teardown
// with t.Cleanup. The cleanup marks the scope failed if t, or any of its
// subtests, failed. A bring-up failure stops t with t.Fatal.
//
//	func TestOrders(t *testing.T) {
//		harness.Attach(t, lifecycle.New(setup))
//		t.Run("create", ...)
//	}
func Attach(t testing.TB, scope lifecycle.Scope) {
	t.Helper()
	if scope == nil {
		return
	}

	// t.Context is canceled before cleanups run, so teardown gets its own.
	ctx := context.Background()
	if err := scope.Bootstrap(ctx); err != nil {
		t.Fatalf("%v", err)
		return
	}

	t.Cleanup(func() {
		if t.Failed() {
			scope.MarkFailed()
		}
		if err := scope.TearDown(ctx); err != nil {
			t.Errorf("%v", err)
		}
	})
}

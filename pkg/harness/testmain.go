package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schmitthub/cosytest/internal/signals"
	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// TestRunner runs a test binary's tests. *testing.M satisfies it.
type TestRunner interface {
	Run() int
}

type mainOptions struct {
	out     io.Writer
	signals bool
	exit    func(int)
}

// MainOption configures RunTestMain.
type MainOption func(*mainOptions)

// WithOutput sets where lifecycle errors are reported. Defaults to os.Stderr.
func WithOutput(w io.Writer) MainOption {
	return func(o *mainOptions) { o.out = w }
}

// WithoutSignalHandling disables teardown on SIGINT/SIGTERM.
func WithoutSignalHandling() MainOption {
	return func(o *mainOptions) { o.signals = false }
}

// RunTestMain brings scope up, runs the tests and tears scope down, returning
// the exit code. Use it from TestMain:
//
//	func TestMain(m *testing.M) {
//		setup := compose.New("orders", []string{"testdata/compose.yaml"}, ".", nil)
//		os.Exit(harness.RunTestMain(m, lifecycle.New(setup)))
//	}
//
// A failed bring-up returns 1 without running tests. A non-zero test exit
// code marks the scope failed, and a teardown error turns a passing run into
// exit code 1. SIGINT and SIGTERM mark the scope failed, tear it down and
// exit with 1.
func RunTestMain(m TestRunner, scope lifecycle.Scope, opts ...MainOption) int {
	o := mainOptions{out: os.Stderr, signals: true, exit: os.Exit}
	for _, opt := range opts {
		opt(&o)
	}
	if scope == nil {
		return m.Run()
	}

	ctx := context.Background()
	if err := scope.Bootstrap(ctx); err != nil {
		fmt.Fprintf(o.out, "ERROR: %v\n", err)
		return 1
	}

	var (
		once        sync.Once
		teardownErr error
	)
	teardown := func() error {
		once.Do(func() { teardownErr = scope.TearDown(ctx) })
		return teardownErr
	}

	stopSignals := func() {}
	if o.signals {
		stopSignals = signals.Watch(func(os.Signal) {
			scope.MarkFailed()
			if err := teardown(); err != nil {
				fmt.Fprintf(o.out, "ERROR: %v\n", err)
			}
			o.exit(1)
		})
	}

	code := m.Run()
	stopSignals()

	if code != 0 {
		scope.MarkFailed()
	}
	if err := teardown(); err != nil {
		fmt.Fprintf(o.out, "ERROR: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

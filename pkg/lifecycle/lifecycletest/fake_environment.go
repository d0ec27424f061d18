// Package lifecycletest provides test doubles for code that drives a
// lifecycle.Environment or lifecycle.Scope.
//
// FakeEnvironment follows the function-field pattern: each method has an Fn
// field controlling its result and every call is recorded in order.
// Unlike a strict fake, unset fields fall back to success so policy tests
// only configure the failures they care about.
//
//	env := lifecycletest.NewFakeEnvironment("orders")
//	env.DownFn = func(context.Context) bool { return false }
//	c := lifecycle.New(env)
//	...
//	lifecycletest.AssertCalledOnce(t, env, "Down")
package lifecycletest

import (
	"context"
	"sync"
	"testing"
	"time"
)

// FakeEnvironment is a recording lifecycle.Environment.
type FakeEnvironment struct {
	Name string

	UpFn       func(ctx context.Context, timeout time.Duration) bool
	DownFn     func(ctx context.Context) bool
	DumpLogsFn func(ctx context.Context, fileName, dir string) error

	mu    sync.Mutex
	Calls []string

	// Arguments of the most recent calls.
	LastTimeout  time.Duration
	LastDumpFile string
	LastDumpDir  string
}

// NewFakeEnvironment returns a FakeEnvironment whose operations all succeed.
func NewFakeEnvironment(name string) *FakeEnvironment {
	return &FakeEnvironment{Name: name}
}

func (f *FakeEnvironment) record(method string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	f.mu.Unlock()
}

func (f *FakeEnvironment) Up(ctx context.Context, timeout time.Duration) bool {
	f.record("Up")
	f.mu.Lock()
	f.LastTimeout = timeout
	f.mu.Unlock()
	if f.UpFn == nil {
		return true
	}
	return f.UpFn(ctx, timeout)
}

func (f *FakeEnvironment) Down(ctx context.Context) bool {
	f.record("Down")
	if f.DownFn == nil {
		return true
	}
	return f.DownFn(ctx)
}

func (f *FakeEnvironment) DumpLogs(ctx context.Context, fileName, dir string) error {
	f.record("DumpLogs")
	f.mu.Lock()
	f.LastDumpFile = fileName
	f.LastDumpDir = dir
	f.mu.Unlock()
	if f.DumpLogsFn == nil {
		return nil
	}
	return f.DumpLogsFn(ctx, fileName, dir)
}

func (f *FakeEnvironment) SetupName() string {
	return f.Name
}

// CallCount returns how many times method was invoked.
func (f *FakeEnvironment) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// CallLog returns a copy of the recorded calls.
func (f *FakeEnvironment) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// AssertCalledOnce fails the test unless method was called exactly once.
func AssertCalledOnce(t *testing.T, f *FakeEnvironment, method string) {
	t.Helper()
	if n := f.CallCount(method); n != 1 {
		t.Errorf("expected %s to be called once, got %d (calls: %v)", method, n, f.CallLog())
	}
}

// AssertNotCalled fails the test if method was called.
func AssertNotCalled(t *testing.T, f *FakeEnvironment, method string) {
	t.Helper()
	if n := f.CallCount(method); n != 0 {
		t.Errorf("expected %s not to be called, got %d (calls: %v)", method, n, f.CallLog())
	}
}

// FakeScope records adapter calls against a lifecycle.Scope.
type FakeScope struct {
	BootstrapErr error
	TearDownErr  error

	mu     sync.Mutex
	Calls  []string
	failed bool
}

func (s *FakeScope) Bootstrap(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "Bootstrap")
	return s.BootstrapErr
}

func (s *FakeScope) MarkFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "MarkFailed")
	s.failed = true
}

func (s *FakeScope) TearDown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "TearDown")
	return s.TearDownErr
}

// Failed reports whether MarkFailed was called.
func (s *FakeScope) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// CallLog returns a copy of the recorded calls.
func (s *FakeScope) CallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Calls...)
}

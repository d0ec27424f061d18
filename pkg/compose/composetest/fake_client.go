package composetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/moby/moby/client"

	"github.com/schmitthub/cosytest/pkg/compose"
)

// FakeAPIClient is a compose.APIClient using the function-field pattern.
// If a method's Fn field is set the fake delegates to it and records the
// call; if nil the call panics with "not implemented: MethodName".
type FakeAPIClient struct {
	mu    sync.Mutex
	Calls []string

	ContainerListFn    func(ctx context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error)
	ContainerInspectFn func(ctx context.Context, container string, opts client.ContainerInspectOptions) (client.ContainerInspectResult, error)
	ContainerLogsFn    func(ctx context.Context, container string, opts client.ContainerLogsOptions) (client.ContainerLogsResult, error)
	PingFn             func(ctx context.Context, opts client.PingOptions) (client.PingResult, error)
	CloseFn            func() error
}

var _ compose.APIClient = (*FakeAPIClient)(nil)

func (f *FakeAPIClient) record(method string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	f.mu.Unlock()
}

func notImplemented(method string) {
	panic(fmt.Sprintf("not implemented: %s (set %sFn on FakeAPIClient)", method, method))
}

// CallCount returns how many times method was invoked.
func (f *FakeAPIClient) CallCount(method string) int {
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

func (f *FakeAPIClient) ContainerList(ctx context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error) {
	if f.ContainerListFn == nil {
		notImplemented("ContainerList")
	}
	f.record("ContainerList")
	return f.ContainerListFn(ctx, opts)
}

func (f *FakeAPIClient) ContainerInspect(ctx context.Context, container string, opts client.ContainerInspectOptions) (client.ContainerInspectResult, error) {
	if f.ContainerInspectFn == nil {
		notImplemented("ContainerInspect")
	}
	f.record("ContainerInspect")
	return f.ContainerInspectFn(ctx, container, opts)
}

func (f *FakeAPIClient) ContainerLogs(ctx context.Context, container string, opts client.ContainerLogsOptions) (client.ContainerLogsResult, error) {
	if f.ContainerLogsFn == nil {
		notImplemented("ContainerLogs")
	}
	f.record("ContainerLogs")
	return f.ContainerLogsFn(ctx, container, opts)
}

func (f *FakeAPIClient) Ping(ctx context.Context, opts client.PingOptions) (client.PingResult, error) {
	if f.PingFn == nil {
		notImplemented("Ping")
	}
	f.record("Ping")
	return f.PingFn(ctx, opts)
}

func (f *FakeAPIClient) Close() error {
	f.record("Close")
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

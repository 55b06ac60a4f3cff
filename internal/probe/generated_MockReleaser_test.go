// Code generated by impgen. DO NOT EDIT.

package probe_test

import (
	context "context"
	probe "github.com/joe/sync-onboard/internal/probe"
	_imptest "github.com/toejough/imptest/imptest"
)

// ReleaserMockHandle is the test handle for Releaser.
type ReleaserMockHandle struct {
	Mock       probe.Releaser
	Method     *ReleaserMockMethods
	Controller *_imptest.Imp
}

// ReleaserMockMethods holds method wrappers for setting expectations.
type ReleaserMockMethods struct {
	Release *ReleaserMockReleaseMethod
}

// ReleaserMockReleaseArgs holds typed arguments for Release.
type ReleaserMockReleaseArgs struct {
	Ctx    context.Context
	Target string
}

// ReleaserMockReleaseCall wraps DependencyCall with typed GetArgs and InjectReturnValues.
type ReleaserMockReleaseCall struct {
	*_imptest.DependencyCall
}

// GetArgs returns the typed arguments for this call.
func (c *ReleaserMockReleaseCall) GetArgs() ReleaserMockReleaseArgs {
	raw := c.RawArgs()
	return ReleaserMockReleaseArgs{
		Ctx:    raw[0].(context.Context),
		Target: raw[1].(string),
	}
}

// InjectReturnValues specifies the typed values the mock should return.
func (c *ReleaserMockReleaseCall) InjectReturnValues(result0 error) {
	c.DependencyCall.InjectReturnValues(result0)
}

// ReleaserMockReleaseMethod wraps DependencyMethod with typed returns.
type ReleaserMockReleaseMethod struct {
	*_imptest.DependencyMethod
	// Eventually is the async version of this method for concurrent code.
	Eventually *ReleaserMockReleaseMethod
}

// ExpectCalledWithExactly waits for a call with exactly the specified arguments.
func (m *ReleaserMockReleaseMethod) ExpectCalledWithExactly(ctx context.Context, target string) *ReleaserMockReleaseCall {
	call := m.DependencyMethod.ExpectCalledWithExactly(ctx, target)
	return &ReleaserMockReleaseCall{DependencyCall: call}
}

// ExpectCalledWithMatches waits for a call with arguments matching the given matchers.
func (m *ReleaserMockReleaseMethod) ExpectCalledWithMatches(matchers ...any) *ReleaserMockReleaseCall {
	call := m.DependencyMethod.ExpectCalledWithMatches(matchers...)
	return &ReleaserMockReleaseCall{DependencyCall: call}
}

// MockReleaser creates a new ReleaserMockHandle for testing.
func MockReleaser(t _imptest.TestReporter) *ReleaserMockHandle {
	ctrl := _imptest.NewImp(t)
	methods := &ReleaserMockMethods{
		Release: newReleaserMockReleaseMethod(_imptest.NewDependencyMethod(ctrl, "Release")),
	}
	h := &ReleaserMockHandle{
		Method:     methods,
		Controller: ctrl,
	}
	h.Mock = &mockReleaserImpl{handle: h}
	return h
}

// mockReleaserImpl implements probe.Releaser.
type mockReleaserImpl struct {
	handle *ReleaserMockHandle
}

// Release implements probe.Releaser.Release.
func (impl *mockReleaserImpl) Release(ctx context.Context, target string) error {
	call := &_imptest.GenericCall{
		MethodName:   "Release",
		Args:         []any{ctx, target},
		ResponseChan: make(chan _imptest.GenericResponse, 1),
	}
	impl.handle.Controller.CallChan <- call
	resp := <-call.ResponseChan
	if resp.Type == "panic" {
		panic(resp.PanicValue)
	}

	var result1 error
	if len(resp.ReturnValues) > 0 {
		if value, ok := resp.ReturnValues[0].(error); ok {
			result1 = value
		}
	}

	return result1
}

// newReleaserMockReleaseMethod creates a typed method wrapper with Eventually initialized.
func newReleaserMockReleaseMethod(dm *_imptest.DependencyMethod) *ReleaserMockReleaseMethod {
	m := &ReleaserMockReleaseMethod{DependencyMethod: dm}
	m.Eventually = &ReleaserMockReleaseMethod{DependencyMethod: dm.Eventually}
	return m
}

// Code generated by impgen. DO NOT EDIT.

package mirror_test

import (
	context "context"
	mirror "github.com/joe/sync-onboard/internal/mirror"
	_imptest "github.com/toejough/imptest/imptest"
)

// ReadinessMockEnsureReadyArgs holds typed arguments for EnsureReady.
type ReadinessMockEnsureReadyArgs struct {
	Ctx context.Context
}

// ReadinessMockEnsureReadyCall wraps DependencyCall with typed GetArgs and InjectReturnValues.
type ReadinessMockEnsureReadyCall struct {
	*_imptest.DependencyCall
}

// GetArgs returns the typed arguments for this call.
func (c *ReadinessMockEnsureReadyCall) GetArgs() ReadinessMockEnsureReadyArgs {
	raw := c.RawArgs()
	return ReadinessMockEnsureReadyArgs{
		Ctx: raw[0].(context.Context),
	}
}

// InjectReturnValues specifies the typed values the mock should return.
func (c *ReadinessMockEnsureReadyCall) InjectReturnValues(result0 error) {
	c.DependencyCall.InjectReturnValues(result0)
}

// ReadinessMockEnsureReadyMethod wraps DependencyMethod with typed returns.
type ReadinessMockEnsureReadyMethod struct {
	*_imptest.DependencyMethod
	// Eventually is the async version of this method for concurrent code.
	Eventually *ReadinessMockEnsureReadyMethod
}

// ExpectCalledWithExactly waits for a call with exactly the specified arguments.
func (m *ReadinessMockEnsureReadyMethod) ExpectCalledWithExactly(ctx context.Context) *ReadinessMockEnsureReadyCall {
	call := m.DependencyMethod.ExpectCalledWithExactly(ctx)
	return &ReadinessMockEnsureReadyCall{DependencyCall: call}
}

// ExpectCalledWithMatches waits for a call with arguments matching the given matchers.
func (m *ReadinessMockEnsureReadyMethod) ExpectCalledWithMatches(matchers ...any) *ReadinessMockEnsureReadyCall {
	call := m.DependencyMethod.ExpectCalledWithMatches(matchers...)
	return &ReadinessMockEnsureReadyCall{DependencyCall: call}
}

// ReadinessMockHandle is the test handle for Readiness.
type ReadinessMockHandle struct {
	Mock       mirror.Readiness
	Method     *ReadinessMockMethods
	Controller *_imptest.Imp
}

// ReadinessMockMethods holds method wrappers for setting expectations.
type ReadinessMockMethods struct {
	EnsureReady *ReadinessMockEnsureReadyMethod
}

// MockReadiness creates a new ReadinessMockHandle for testing.
func MockReadiness(t _imptest.TestReporter) *ReadinessMockHandle {
	ctrl := _imptest.NewImp(t)
	methods := &ReadinessMockMethods{
		EnsureReady: newReadinessMockEnsureReadyMethod(_imptest.NewDependencyMethod(ctrl, "EnsureReady")),
	}
	h := &ReadinessMockHandle{
		Method:     methods,
		Controller: ctrl,
	}
	h.Mock = &mockReadinessImpl{handle: h}
	return h
}

// mockReadinessImpl implements mirror.Readiness.
type mockReadinessImpl struct {
	handle *ReadinessMockHandle
}

// EnsureReady implements mirror.Readiness.EnsureReady.
func (impl *mockReadinessImpl) EnsureReady(ctx context.Context) error {
	call := &_imptest.GenericCall{
		MethodName:   "EnsureReady",
		Args:         []any{ctx},
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

// newReadinessMockEnsureReadyMethod creates a typed method wrapper with Eventually initialized.
func newReadinessMockEnsureReadyMethod(dm *_imptest.DependencyMethod) *ReadinessMockEnsureReadyMethod {
	m := &ReadinessMockEnsureReadyMethod{DependencyMethod: dm}
	m.Eventually = &ReadinessMockEnsureReadyMethod{DependencyMethod: dm.Eventually}
	return m
}

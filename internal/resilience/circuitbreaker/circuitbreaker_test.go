package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

var errUpstream = errors.New("connection refused")

func testConfig() Config {
	return Config{
		Name:             "fetch-test",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func tripOpen(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("breaker should be open after sustained failures, state=%v", cb.State())
	}
}

func TestNew_StartsClosed(t *testing.T) {
	cb := New(testConfig())

	if cb.Name() != "fetch-test" {
		t.Errorf("Name() = %q, want %q", cb.Name(), "fetch-test")
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("initial state = %v, want Closed", cb.State())
	}
}

func TestExecute_PassesThroughResultAndError(t *testing.T) {
	cb := New(testConfig())

	got, err := cb.Execute(func() (interface{}, error) { return "page body", nil })
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got != "page body" {
		t.Errorf("Execute result = %v, want %q", got, "page body")
	}

	_, err = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	if !errors.Is(err, errUpstream) {
		t.Errorf("Execute error = %v, want %v", err, errUpstream)
	}
}

func TestExecute_RefusesCallsWhileOpen(t *testing.T) {
	cb := New(testConfig())
	tripOpen(t, cb)

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})

	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if called {
		t.Error("fn must not run while the breaker is open")
	}
}

func TestExecute_RecoversThroughHalfOpen(t *testing.T) {
	cb := New(testConfig())
	tripOpen(t, cb)

	// After Timeout the breaker admits probe requests again.
	time.Sleep(150 * time.Millisecond)

	if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
		t.Fatalf("probe after timeout failed: %v", err)
	}
	if cb.State() == gobreaker.StateOpen {
		t.Errorf("breaker still open after successful probe, state=%v", cb.State())
	}
}

func TestReadyToTrip_RequiresMinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	// 100% failure rate but below the request floor.
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want Closed below MinRequests", cb.State())
	}
}

func TestReadyToTrip_RatioBoundary(t *testing.T) {
	cb := New(testConfig())

	// 3 failures out of 5 is exactly the 0.6 threshold.
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return "ok", nil })
	}
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	}

	if cb.State() != gobreaker.StateOpen {
		t.Errorf("state = %v, want Open at exact threshold", cb.State())
	}
}

func TestMetadataFetchConfig(t *testing.T) {
	cfg := MetadataFetchConfig()

	if cfg.Name != "metadata-fetch" {
		t.Errorf("Name = %q, want metadata-fetch", cfg.Name)
	}
	if cfg.FailureThreshold != 0.8 {
		t.Errorf("FailureThreshold = %v, want 0.8", cfg.FailureThreshold)
	}
	if cfg.MinRequests != 10 {
		t.Errorf("MinRequests = %d, want 10", cfg.MinRequests)
	}
	if cfg.MaxRequests != 5 {
		t.Errorf("MaxRequests = %d, want 5", cfg.MaxRequests)
	}
}

func TestIsSuccessful_ExcludedErrorsDoNotTrip(t *testing.T) {
	errExpected := errors.New("origin said no")
	cfg := testConfig()
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errExpected)
	}
	cb := New(cfg)

	for i := 0; i < 20; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errExpected })
		if !errors.Is(err, errExpected) {
			t.Fatalf("excluded error must still reach the caller, got %v", err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("excluded errors tripped the breaker, state=%v", cb.State())
	}

	// Errors the predicate rejects still count.
	cb = New(cfg)
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	}
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("counted failures should open the breaker, state=%v", cb.State())
	}
}

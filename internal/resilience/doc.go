// Package resilience provides reliability and fault tolerance patterns for the application.
// It currently holds the circuit breaker used to guard outbound metadata
// fetches against persistently failing upstreams.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.MetadataFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchPage()
//	})
package resilience

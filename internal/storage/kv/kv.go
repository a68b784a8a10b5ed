// Package kv provides the key-value persistence under the record store.
// It mirrors the browser localStorage layout of the original front end:
// every value is a JSON document stored under a prefixed string key.
package kv

// Store is a flat JSON key-value bucket.
type Store interface {
	// Get unmarshals the value under key into result and reports whether
	// the key exists.
	Get(key string, result any) (bool, error)
	// Set marshals value and stores it under key, replacing any previous
	// value.
	Set(key string, value any) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every stored key.
	Keys() ([]string, error)
}

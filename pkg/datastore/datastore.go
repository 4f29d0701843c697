package datastore

// DataStore is an opaque key-value store for state that must survive
// between sessions. Values are JSON encoded.
type DataStore interface {
	// Load decodes the value stored under key into v. It reports false
	// when the key is absent.
	Load(key string, v interface{}) (bool, error)

	// Save encodes v and stores it under key.
	Save(key string, v interface{}) error

	// Delete removes key.
	Delete(key string) error
}

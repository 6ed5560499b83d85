package config

// Section is one named group of settings persisted by a Store.
type Section interface {
	// ID returns the key the section is stored under
	ID() string

	// Title returns a short human readable name
	Title() string

	// Description explains what the section configures
	Description() string

	// Data returns the current values
	Data() map[string]interface{}

	// SetData updates the values from stored data. Unknown keys are ignored.
	SetData(data map[string]interface{}) error

	// Validate checks the current values
	Validate() error

	// Reset restores the defaults
	Reset()
}

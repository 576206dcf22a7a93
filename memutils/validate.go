package memutils

// Validatable is anything DebugValidate can check. Validate should walk the whole structure
// and return an error describing the first inconsistency it finds.
type Validatable interface {
	Validate() error
}

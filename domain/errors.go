package domain

// StoreError represents a failure in the set store backend. Callers treat
// it as recoverable: queries degrade to empty results instead of failing.
type StoreError struct {
	Op  string
	Err string
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err
}

// RepositoryError represents an error from the catalog store layer.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}

// DriverError represents an error from the driver layer.
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

// RebuildStats reports the outcome of a facet index rebuild. Per-entity
// failures increment Errors without aborting the rebuild.
type RebuildStats struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Errors     int `json:"errors"`
}

// Package sentinel defines the errors stores report as plain facts about
// their data. Services translate them into coded domain errors at the
// boundary; input validation never uses these.
package sentinel

import "errors"

// ErrNotFound reports that no record exists for the requested key. Stores
// return it, optionally wrapped, from every lookup miss.
var ErrNotFound = errors.New("not found")

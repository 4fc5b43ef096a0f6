package tracker

import "strconv"

// Status is the derived synchronization state of an Object.
type Status int

const (
	// Synced means no field was modified since the last successful sync.
	Synced Status = iota
	// Dirty means at least one field awaits persistence.
	Dirty
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Synced:
		return "Synced"
	case Dirty:
		return "Dirty"
	default:
		return strconv.Itoa(int(s))
	}
}

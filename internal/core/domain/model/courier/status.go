package courier

import "dispatch/internal/pkg/errs"

// Status is the courier availability state.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	// Idle means the courier has no batch and can be allocated one.
	Idle
	// Busy means the courier is out delivering a batch.
	Busy
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown: "Unknown",
		Idle:    "Idle",
		Busy:    "Busy",
	}
}

// Validate returns an error for any status outside Idle and Busy.
func (s Status) Validate() error {
	switch s {
	case Idle, Busy:
		return nil
	default:
		return errs.NewValueIsInvalidError("status")
	}
}

// String returns the textual form of the status.
func (s Status) String() string {
	if name, ok := getStatusStrings()[s]; ok {
		return name
	}
	return getStatusStrings()[Unknown]
}

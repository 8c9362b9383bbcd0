package model

import "strings"

// ReasonKind classifies a feed reason-for-change code into the two event
// families the scoring policy branches on.
type ReasonKind int

const (
	ReasonUnknown ReasonKind = iota
	ReasonAppointment
	ReasonSeparation
)

var separationReasons = map[string]bool{
	"RETIRED":    true,
	"RESIGNED":   true,
	"TERMINATED": true,
	"DECEASED":   true,
}

var appointmentReasons = map[string]bool{
	"APPOINTED":  true,
	"PROMOTED":   true,
	"REINSTATED": true,
	"DESIGNATED": true,
}

// ClassifyReason maps a raw reason code to its event family. Unrecognized
// codes return ReasonUnknown and are routed to manual review.
func ClassifyReason(code string) ReasonKind {
	c := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case separationReasons[c]:
		return ReasonSeparation
	case appointmentReasons[c]:
		return ReasonAppointment
	default:
		return ReasonUnknown
	}
}

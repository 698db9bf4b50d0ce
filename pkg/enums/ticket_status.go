package enums

// TicketStatus marks whether an issued ticket is still valid.
type TicketStatus string

const (
	TicketStatusAccepted TicketStatus = "accepted"
	TicketStatusRevoked  TicketStatus = "revoked"
	TicketStatusUsed     TicketStatus = "used"
)

// String implements fmt.Stringer.
func (s TicketStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TicketStatus.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusAccepted, TicketStatusRevoked, TicketStatusUsed:
		return true
	}
	return false
}

package enums

// NotificationKind names an outbound notification template.
type NotificationKind string

const (
	NotificationWelcome            NotificationKind = "welcome"
	NotificationInvitationReceived NotificationKind = "invitation_received"
	NotificationTicketConfirmation NotificationKind = "ticket_confirmation"
)

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}

package models

// MailKind тип письма в очереди рассылки.
type MailKind string

const (
	MailSignupCode          MailKind = "signup_code"
	MailResetCode           MailKind = "reset_code"
	MailSubscriptionExpired MailKind = "subscription_expired"
)

// MailJob задание на отправку письма. Передаётся через RabbitMQ.
type MailJob struct {
	Kind         MailKind `json:"kind"`
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	Code         string   `json:"code,omitempty"`
	ValidMinutes int      `json:"valid_minutes,omitempty"`
}

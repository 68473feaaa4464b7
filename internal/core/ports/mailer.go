package ports

// Mailer dispatches notifications asynchronously. Calls never block on
// delivery and never report delivery failures; those are logged by the
// implementation.
type Mailer interface {
	SendAccountVerification(email, firstName, link string)
	SendPasswordReset(email, firstName string, otp int)
}

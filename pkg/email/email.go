package email

import "context"

// Message is one outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SendResult reports the provider's decision for one message. A structured
// rejection (Accepted=false) is distinct from a transport error, which
// surfaces as the error return of Send.
type SendResult struct {
	Accepted     bool
	MessageID    string
	ErrorMessage string
}

// Client is the outbound mail surface the digest pipeline depends on.
type Client interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

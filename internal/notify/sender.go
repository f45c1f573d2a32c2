// Package notify delivers text messages to shoppers' phone numbers
// through an external gateway. Delivery failures are surfaced to the
// caller and never retried here.
package notify

import "context"

type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

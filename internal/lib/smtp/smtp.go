// Package smtp wraps the SMTP transport behind small interfaces so the
// mailer can be tested without a live server.
package smtp

import "io"

// Client is the slice of *smtp.Client the mailer uses.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface opens SMTP connections and exposes the sender
// identity.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}

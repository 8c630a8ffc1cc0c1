package services

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"
)

// MailService sends transactional email over SMTP. Delivery happens off the
// request path: handlers call the Async variants so a slow or dead SMTP host
// never fails an API request.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailService creates a MailService. An empty host disables sending,
// which is the mode the test suite runs in.
func NewMailService(host, port, username, password, from string) *MailService {
	return &MailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

const mailRetries = 3

// Send delivers a single plain-text message synchronously.
func (s *MailService) Send(to, subject, body string) error {
	if s.host == "" {
		log.Debug().Str("to", to).Str("subject", subject).Msg("smtp not configured, skipping email")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := s.host + ":" + s.port
	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
}

// SendAsync delivers a message in the background with bounded retry.
func (s *MailService) SendAsync(to, subject, body string) {
	go func() {
		var err error
		for attempt := 1; attempt <= mailRetries; attempt++ {
			if err = s.Send(to, subject, body); err == nil {
				return
			}
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("giving up on email delivery")
	}()
}

// SendWelcome emails the registration greeting.
func (s *MailService) SendWelcome(username, email string) {
	s.SendAsync(email,
		"Welcome to TrekBot!",
		fmt.Sprintf("Hi %s, welcome to TrekBot! Enjoy your journey.", username))
}

// SendPasswordResetOTP emails a password-reset code.
func (s *MailService) SendPasswordResetOTP(email, code string) {
	s.SendAsync(email,
		"Your OTP for Password Reset",
		fmt.Sprintf("Your OTP is %s. It will expire in 10 minutes.", code))
}

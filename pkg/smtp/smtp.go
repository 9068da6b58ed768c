package smtp

import (
	"fmt"
	"html"
	"time"

	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
)

// Blast is a notification mailed to everyone who saved an event.
type Blast struct {
	EventTitle string
	EventLink  string
	Author     string
	Content    string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client is the outgoing mail client.
type Client struct {
	dialer sender
	from   string
	domain string
}

// NewClient creates a Client sending as from. Message ids use domain.
func NewClient(dialer *gomail.Dialer, from, domain string) *Client {
	return &Client{dialer: dialer, from: from, domain: domain}
}

// SendBlast mails the blast to every recipient, one message each so that
// addresses are not disclosed to other recipients.
func (c *Client) SendBlast(to []string, blast Blast) error {
	if len(to) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Update from %s", blast.EventTitle)
	text := fmt.Sprintf("%s wrote about %s:\n\n%s\n\n%s", blast.Author, blast.EventTitle, blast.Content, blast.EventLink)
	body := fmt.Sprintf(
		"<p><b>%s</b> wrote about <a href=\"%s\">%s</a>:</p><p>%s</p>",
		html.EscapeString(blast.Author),
		html.EscapeString(blast.EventLink),
		html.EscapeString(blast.EventTitle),
		html.EscapeString(blast.Content),
	)

	messages := make([]*gomail.Message, 0, len(to))
	for _, address := range to {
		msg := c.message(address, subject)
		msg.SetBody("text/plain", text)
		msg.AddAlternative("text/html", body)
		messages = append(messages, msg)
	}

	return c.dialer.DialAndSend(messages...)
}

// LogHook returns a log hook that mails entries at or above level to the given address.
// Mail is sent in the background; failures are dropped to avoid logging loops.
func (c *Client) LogHook(to string, level zapcore.Level) types.LogHook {
	return func(log types.Log) {
		if log.Level < level {
			return
		}
		msg := c.message(to, fmt.Sprintf("[%s] %s", log.Level.CapitalString(), log.LoggerName))
		msg.SetBody("text/plain", fmt.Sprintf("%s\n%s\n\n%s", log.Timestamp.Format(time.RFC3339), log.Caller, log.Message))
		go func() {
			_ = c.dialer.DialAndSend(msg)
		}()
	}
}

func (c *Client) message(to, subject string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("Message-ID", generateMessageID(c.domain))
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

func generateMessageID(domain string) string {
	uniqueID := uuid.New().String()
	return fmt.Sprintf("<%s@%s>", uniqueID, domain)
}

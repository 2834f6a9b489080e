// Package mail sends the report through Amazon SES.
package mail

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/mail")

const charset = "UTF-8"

// SESAPI defines required SES operations.
type SESAPI interface {
	SendEmail(
		ctx context.Context,
		params *ses.SendEmailInput,
		optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)

	SendRawEmail(
		ctx context.Context,
		params *ses.SendRawEmailInput,
		optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single-recipient mail.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Clone returns a copy of m that shares no slices with it.
func (m Message) Clone() Message {
	c := m
	if m.Attachments != nil {
		c.Attachments = make([]Attachment, len(m.Attachments))
		for i, a := range m.Attachments {
			a.Data = bytes.Clone(a.Data)
			c.Attachments[i] = a
		}
	}
	return c
}

// SES sends messages from a fixed sender address.
type SES struct {
	client SESAPI
	from   string
}

// NewSES creates a new SES transport.
func NewSES(client SESAPI, from string) *SES {
	return &SES{client: client, from: from}
}

// Send delivers msg and returns the SES message ID. Messages with
// attachments are sent as raw MIME.
func (s *SES) Send(ctx context.Context, msg Message) (string, error) {
	ctx, span := tracer.Start(ctx, "mail.ses")
	defer span.End()
	span.SetAttributes(
		attribute.String("mail.to", msg.To),
		attribute.Int("mail.attachments", len(msg.Attachments)),
	)

	if len(msg.Attachments) > 0 {
		return s.sendRaw(ctx, msg)
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.HTML)},
				Text: &types.Content{Charset: aws.String(charset), Data: aws.String(msg.Text)},
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("cannot send email to %s: %w", msg.To, err)
	}

	return aws.ToString(out.MessageId), nil
}

func (s *SES) sendRaw(ctx context.Context, msg Message) (string, error) {
	raw, err := s.buildRaw(msg)
	if err != nil {
		return "", err
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(s.from),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return "", fmt.Errorf("cannot send raw email to %s: %w", msg.To, err)
	}

	return aws.ToString(out.MessageId), nil
}

func (s *SES) buildRaw(msg Message) ([]byte, error) {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	e.HTML = []byte(msg.HTML)

	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return nil, fmt.Errorf("cannot attach %s: %w", a.Filename, err)
		}
	}

	raw, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("cannot encode mime message: %w", err)
	}

	return raw, nil
}

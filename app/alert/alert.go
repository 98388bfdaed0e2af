// Package alert reports tampered codes to operators via webhook and email.
package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
)

const defaultTemplate = `{{.Kind}} code detected{{if .ShortID}}, short id {{.ShortID}}{{end}}` +
	`{{if .ID}} ({{.ID}}){{end}}, client {{.Client}}, {{.Time.Format "2006-01-02T15:04:05Z07:00"}}`

// Config for alert channels. A channel is enabled when its destination is set.
type Config struct {
	Webhook    string   // webhook url
	Headers    []string // webhook headers, "Name:value"
	Email      EmailConfig
	Timeout    time.Duration
	Cooldown   time.Duration // alerts for the same code are sent once per cooldown
	Retries    int
	RetryDelay time.Duration
	Template   string // text/template for the message, default used if empty
}

// EmailConfig contains SMTP configuration and the alert recipient
type EmailConfig struct {
	To       string
	From     string
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// Event describes a verification which should be reported
type Event struct {
	Kind    string
	ID      string
	ShortID string
	Client  string // hashed client ip
	Time    time.Time
}

type sender interface {
	Send(ctx context.Context, destination, text string) error
}

type channel struct {
	name        string
	sender      sender
	destination string
}

// Notifier sends alerts to all configured channels
type Notifier struct {
	Config
	channels []channel
	tmpl     *template.Template
	seen     cache.Cache[string, struct{}]
}

// New makes Notifier. Returns nil without error if no channel is configured.
func New(cfg Config) (*Notifier, error) {
	if cfg.Webhook == "" && cfg.Email.To == "" {
		return nil, nil
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 10 * time.Minute
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	tmplText := cfg.Template
	if tmplText == "" {
		tmplText = defaultTemplate
	}
	tmpl, err := template.New("alert").Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert template: %w", err)
	}

	res := &Notifier{
		Config: cfg,
		tmpl:   tmpl,
		seen:   cache.NewCache[string, struct{}]().WithTTL(cfg.Cooldown).WithMaxKeys(10000),
	}

	if cfg.Webhook != "" {
		if u, e := url.Parse(cfg.Webhook); e != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("webhook url %q is not http(s)", cfg.Webhook)
		}
		wh := notify.NewWebhook(notify.WebhookParams{Timeout: cfg.Timeout, Headers: cfg.Headers})
		res.channels = append(res.channels, channel{name: "webhook", sender: wh, destination: cfg.Webhook})
	}

	if cfg.Email.To != "" {
		ch, e := emailChannel(cfg.Email, cfg.Timeout)
		if e != nil {
			return nil, e
		}
		res.channels = append(res.channels, ch)
	}

	log.Printf("[INFO] alerts enabled, %d channel(s), cooldown %v", len(res.channels), cfg.Cooldown)
	return res, nil
}

func emailChannel(cfg EmailConfig, timeout time.Duration) (channel, error) {
	if cfg.Host == "" {
		return channel{}, errors.New("email host is required for email alerts")
	}
	if cfg.From == "" {
		return channel{}, errors.New("email from address is required for email alerts")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	em := notify.NewEmail(notify.SMTPParams{
		Host:        cfg.Host,
		Port:        cfg.Port,
		TLS:         cfg.TLS,
		ContentType: "text/plain",
		Charset:     "UTF-8",
		Username:    cfg.Username,
		Password:    cfg.Password,
		TimeOut:     timeout,
	})

	params := url.Values{}
	params.Set("subject", "qrseal: tampered code")
	params.Set("from", cfg.From)
	return channel{name: "email", sender: em, destination: "mailto:" + cfg.To + "?" + params.Encode()}, nil
}

// Send reports ev to every channel. Repeated events for the same code within cooldown are skipped.
// Errors of all channels are joined.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	key := dedupKey(ev)
	if _, ok := n.seen.Get(key); ok {
		log.Printf("[DEBUG] alert for %s suppressed, cooldown", key)
		return nil
	}

	text, err := n.Render(ev)
	if err != nil {
		return err
	}

	var errs []error
	for _, ch := range n.channels {
		err := repeater.NewDefault(n.Retries, n.RetryDelay).Do(ctx, func() error {
			return ch.sender.Send(ctx, ch.destination, text)
		})
		if err != nil {
			log.Printf("[WARN] failed to send %s alert, %v", ch.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
			continue
		}
		log.Printf("[INFO] %s alert sent for %s", ch.name, key)
	}
	// cooldown starts only after a delivered alert, failed ones are retried on the next event
	if len(errs) < len(n.channels) {
		n.seen.Add(key, struct{}{})
	}
	return errors.Join(errs...)
}

// Render makes alert text for ev
func (n *Notifier) Render(ev Event) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, ev); err != nil {
		return "", fmt.Errorf("failed to execute alert template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func dedupKey(ev Event) string {
	switch {
	case ev.ID != "":
		return ev.Kind + ":" + ev.ID
	case ev.ShortID != "":
		return ev.Kind + ":" + ev.ShortID
	default:
		return ev.Kind + ":client:" + ev.Client
	}
}

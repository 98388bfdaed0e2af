package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/go-pkgz/lgr"
	flags "github.com/umputun/go-flags"

	"github.com/qrseal/qrseal/app/alert"
	"github.com/qrseal/qrseal/app/assess"
	"github.com/qrseal/qrseal/app/crypt"
	"github.com/qrseal/qrseal/app/keys"
	"github.com/qrseal/qrseal/app/render"
	"github.com/qrseal/qrseal/app/sealer"
	"github.com/qrseal/qrseal/app/server"
	"github.com/qrseal/qrseal/app/store"
)

var opts struct {
	Listen     string        `long:"listen" env:"LISTEN" default:":8080" description:"listen address"`
	AESKey     string        `long:"aes-key" env:"AES_ENCRYPTION_KEY" description:"base64 encoded 256-bit encryption key"`
	HMACKey    string        `long:"hmac-key" env:"HMAC_SECRET_KEY" description:"base64 encoded 256-bit signing key"`
	DB         string        `long:"db" env:"DB" default:"qrseal.db" description:"sqlite file, :memory: for in-memory store"`
	Retention  time.Duration `long:"retention" env:"RETENTION" default:"720h" description:"verification log retention, 0 keeps forever"`
	Users      []string      `long:"user" env:"USERS" env-delim:"," description:"api user as name:bcrypt-hash"`
	RateLimit  float64       `long:"rate-limit" env:"RATE_LIMIT" default:"10" description:"requests per second per client, 0 disables"`
	IPSalt     string        `long:"ip-salt" env:"IP_SALT" description:"secret for client ip hashing, random if not set"`
	MaxContent int           `long:"max-content" env:"MAX_CONTENT" default:"700" description:"max content length, in characters"`
	MaxBody    string        `long:"max-body" env:"MAX_BODY" default:"64KB" description:"max request body size"`
	Protocol   string        `long:"protocol" env:"PROTOCOL" choice:"http" choice:"https" default:"https" description:"public protocol"`

	Assess struct {
		URL     string        `long:"url" env:"URL" description:"assessment service url, static policy if not set"`
		Token   string        `long:"token" env:"TOKEN" description:"assessment service bearer token"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"15s" description:"assessment timeout"`
		Action  string        `long:"action" env:"ACTION" choice:"allow" choice:"rewrite" choice:"refuse" default:"allow" description:"static policy action"`
		Deny    []string      `long:"deny" env:"DENY" env-delim:"," description:"static policy denied hosts"`
	} `group:"assess" namespace:"assess" env-namespace:"ASSESS"`

	Alert struct {
		Webhook  string        `long:"webhook" env:"WEBHOOK" description:"tamper alert webhook url"`
		Headers  []string      `long:"header" env:"HEADERS" env-delim:"," description:"webhook header, name:value"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"alert send timeout"`
		Cooldown time.Duration `long:"cooldown" env:"COOLDOWN" default:"10m" description:"min interval between alerts for the same code"`
		Retries  int           `long:"retries" env:"RETRIES" default:"3" description:"alert send attempts"`
		Template string        `long:"template" env:"TEMPLATE" description:"alert message template"`
		Email    struct {
			To       string `long:"to" env:"TO" description:"alert recipient"`
			From     string `long:"from" env:"FROM" default:"qrseal@localhost" description:"alert sender"`
			Host     string `long:"host" env:"HOST" description:"smtp host"`
			Port     int    `long:"port" env:"PORT" default:"587" description:"smtp port"`
			Username string `long:"username" env:"USERNAME" description:"smtp user"`
			Password string `long:"password" env:"PASSWORD" description:"smtp password"`
			TLS      bool   `long:"tls" env:"TLS" description:"use tls"`
		} `group:"email" namespace:"email" env-namespace:"EMAIL"`
	} `group:"alert" namespace:"alert" env-namespace:"ALERT"`

	GenKeys bool `long:"genkeys" description:"print a new pair of keys and exit"`
	Dbg     bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if opts.GenKeys {
		if err := genKeys(); err != nil {
			fmt.Fprintf(os.Stderr, "can't generate keys, %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("qrseal %s\n", revision)
	setupLog(opts.Dbg, opts.AESKey, opts.HMACKey, opts.Assess.Token, opts.Alert.Email.Password)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	kc := keys.Config{EncryptionKey: opts.AESKey, SigningKey: opts.HMACKey}
	if _, err := kc.Load(); err != nil {
		return fmt.Errorf("keys are not usable, make new ones with --genkeys: %w", err)
	}

	maxBody, err := humanize.ParseBytes(opts.MaxBody)
	if err != nil {
		return fmt.Errorf("invalid max body size %q: %w", opts.MaxBody, err)
	}

	dataStore, err := makeStore(opts.DB, opts.Retention)
	if err != nil {
		return fmt.Errorf("can't open store: %w", err)
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			log.Printf("[WARN] can't close store, %v", err)
		}
	}()

	sl := sealer.New(kc, crypt.AESGCM{}, crypt.HMAC{}, makeAssessor(), dataStore, sealer.Params{AssessTimeout: opts.Assess.Timeout})

	ipSalt := opts.IPSalt
	if ipSalt == "" {
		if ipSalt, err = keys.Generate(); err != nil {
			return fmt.Errorf("can't make ip salt: %w", err)
		}
		log.Printf("[INFO] ip salt not set, hashed client ips won't survive restart")
	}

	alerter, err := makeAlerter()
	if err != nil {
		return fmt.Errorf("can't make alerter: %w", err)
	}

	srv, err := server.New(sl, dataStore, render.Renderer{}, alerter, server.Config{
		Listen:     opts.Listen,
		Version:    revision,
		Users:      opts.Users,
		IPSalt:     ipSalt,
		RateLimit:  opts.RateLimit,
		MaxContent: opts.MaxContent,
		MaxBody:    int64(maxBody), //nolint:gosec // sizes from config are small
		Protocol:   opts.Protocol,
	})
	if err != nil {
		return fmt.Errorf("can't make server: %w", err)
	}
	if len(opts.Users) == 0 {
		log.Printf("[WARN] no users defined, saved codes api is not accessible")
	}

	return srv.Run(ctx)
}

func makeStore(db string, retention time.Duration) (*store.SQLite, error) {
	if db == ":memory:" {
		return store.NewInMemory(retention), nil
	}
	return store.NewSQLite(db, retention)
}

func makeAssessor() sealer.Assessor {
	if opts.Assess.URL != "" {
		log.Printf("[INFO] remote assessor %s", opts.Assess.URL)
		return &assess.Remote{URL: opts.Assess.URL, Token: opts.Assess.Token, Client: &http.Client{Timeout: opts.Assess.Timeout}}
	}
	log.Printf("[INFO] static assessor, action %s, %d denied hosts", opts.Assess.Action, len(opts.Assess.Deny))
	return assess.Static{Action: assess.Action(opts.Assess.Action), Deny: opts.Assess.Deny}
}

// makeAlerter returns nil interface if no alert channel is configured
func makeAlerter() (server.Alerter, error) {
	ntf, err := alert.New(alert.Config{
		Webhook:  opts.Alert.Webhook,
		Headers:  opts.Alert.Headers,
		Timeout:  opts.Alert.Timeout,
		Cooldown: opts.Alert.Cooldown,
		Retries:  opts.Alert.Retries,
		Template: opts.Alert.Template,
		Email: alert.EmailConfig{
			To:       opts.Alert.Email.To,
			From:     opts.Alert.Email.From,
			Host:     opts.Alert.Email.Host,
			Port:     opts.Alert.Email.Port,
			Username: opts.Alert.Email.Username,
			Password: opts.Alert.Email.Password,
			TLS:      opts.Alert.Email.TLS,
		},
	})
	if err != nil {
		return nil, err
	}
	if ntf == nil {
		log.Printf("[INFO] tamper alerts disabled")
		return nil, nil
	}
	return ntf, nil
}

// genKeys prints a fresh pair of independent keys in env format
func genKeys() error {
	enc, err := keys.Generate()
	if err != nil {
		return err
	}
	sign, err := keys.Generate()
	if err != nil {
		return err
	}
	fmt.Printf("AES_ENCRYPTION_KEY=%s\nHMAC_SECRET_KEY=%s\n", enc, sign)
	return nil
}

func setupLog(dbg bool, secrets ...string) {
	logOpts := []log.Option{log.Msec, log.LevelBraces, log.StackTraceOnError}
	if dbg {
		logOpts = []log.Option{log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces, log.StackTraceOnError}
	}

	var sec []string
	for _, s := range secrets {
		if s != "" {
			sec = append(sec, s)
		}
	}
	if len(sec) > 0 {
		logOpts = append(logOpts, log.Secret(sec...))
	}
	log.SetupStdLogger(logOpts...)
	log.Setup(logOpts...)
}

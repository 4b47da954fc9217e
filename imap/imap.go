package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

var ErrMessageNotFound = errors.New("no message with the requested uid")

// Options configures a single raw-message fetch from an IMAP mailbox.
type Options struct {
	Host               string
	Port               int
	Username           string
	Password           string
	UseTLS             bool
	InsecureSkipVerify bool
	Mailbox            string
	UID                uint32
}

// Fetcher retrieves one message's exact bytes by UID. The fetch uses
// BODY.PEEK so the message keeps its flags; the returned bytes go into
// the same extraction pipeline as a local file would.
type Fetcher struct {
	opts   Options
	logger *slog.Logger
}

func NewFetcher(opts Options, logger *slog.Logger) (*Fetcher, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("imap host is empty")
	}
	if opts.Port <= 0 {
		return nil, fmt.Errorf("imap port must be positive")
	}
	if opts.UID == 0 {
		return nil, fmt.Errorf("imap uid must be positive")
	}
	return &Fetcher{opts: opts, logger: logger}, nil
}

// FetchRaw dials, logs in, selects the mailbox and retrieves the full
// raw message. The connection is torn down on every exit path.
func (f *Fetcher) FetchRaw(ctx context.Context) ([]byte, error) {
	client, cleanup, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if _, err := client.Select(f.mailbox(), nil).Wait(); err != nil {
		return nil, fmt.Errorf("select mailbox %s: %w", f.mailbox(), err)
	}

	section := &imapv2.FetchItemBodySection{Peek: true}
	fetchOptions := &imapv2.FetchOptions{
		BodySection: []*imapv2.FetchItemBodySection{section},
	}

	messages, err := client.Fetch(imapv2.UIDSetNum(imapv2.UID(f.opts.UID)), fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetch uid %d: %w", f.opts.UID, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("uid %d in %s: %w", f.opts.UID, f.mailbox(), ErrMessageNotFound)
	}

	raw := messages[0].FindBodySection(section)
	if len(raw) == 0 {
		return nil, fmt.Errorf("uid %d in %s: empty body section", f.opts.UID, f.mailbox())
	}

	if f.logger != nil {
		f.logger.Debug("fetched message", "uid", f.opts.UID, "mailbox", f.mailbox(), "size", len(raw))
	}

	return raw, nil
}

func (f *Fetcher) dial(ctx context.Context) (*imapclient.Client, func(), error) {
	address := net.JoinHostPort(f.opts.Host, strconv.Itoa(f.opts.Port))
	options := &imapclient.Options{}

	if f.opts.UseTLS {
		options.TLSConfig = &tls.Config{
			ServerName:         f.opts.Host,
			InsecureSkipVerify: f.opts.InsecureSkipVerify,
		}
	}

	var (
		client *imapclient.Client
		err    error
	)

	if f.opts.UseTLS {
		client, err = imapclient.DialTLS(address, options)
	} else {
		client, err = imapclient.DialInsecure(address, options)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("dial imap %s: %w", address, err)
	}

	if err := client.Login(f.opts.Username, f.opts.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("imap login failed: %w", err)
	}

	if f.logger != nil {
		f.logger.Debug("imap connection established", "address", address, "user", f.opts.Username, "tls", f.opts.UseTLS)
	}

	stopClose := context.AfterFunc(ctx, func() {
		_ = client.Close()
	})

	cleanup := func() {
		stopClose()
		if ctx.Err() == nil {
			if err := client.Logout().Wait(); err != nil {
				if f.logger != nil {
					f.logger.Warn("imap logout failed", "err", err)
				}
			}
		}
		if err := client.Close(); err != nil && f.logger != nil {
			f.logger.Debug("imap connection closed", "err", err)
		}
	}

	return client, cleanup, nil
}

func (f *Fetcher) mailbox() string {
	if f.opts.Mailbox == "" {
		return "INBOX"
	}
	return f.opts.Mailbox
}

package mbox

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/pgp-sig-extract/extractor"
	"github.com/dhcgn/pgp-sig-extract/filter"
	"github.com/dhcgn/pgp-sig-extract/model"
	"github.com/dhcgn/pgp-sig-extract/rawmime"
	"github.com/dhcgn/pgp-sig-extract/state"
	"github.com/dhcgn/pgp-sig-extract/stats"
)

// Options configures a batch extraction over an mbox archive.
type Options struct {
	Path          string
	OutDir        string
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// Read opens an mbox file and calls fn for each raw message in order.
// The bytes handed to fn are exactly what the mbox reader yields for
// that message.
func Read(path string, fn func(idx int, raw []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return fmt.Errorf("message %d read: %w", idx, err)
		}

		if err := fn(idx, raw); err != nil {
			return err
		}
	}
}

// CountMessages counts the total number of messages in an mbox file.
func CountMessages(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, err
		}

		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			// count the message even when its bytes cannot be drained
			count++
			continue
		}
		count++
	}
}

// Batch runs the extraction over every matching message of an archive,
// writing one artifact directory per signed message. Each message is an
// independent run; a malformed message is counted and reported, it does
// not abort the rest of the archive.
type Batch struct {
	opts      Options
	filter    *filter.Filter
	logger    *slog.Logger
	observers []stats.Observer
	tracker   state.Tracker
}

func NewBatch(opts Options, logger *slog.Logger, observers ...stats.Observer) (*Batch, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("mbox path is empty")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is empty")
	}

	f, err := filter.New(filter.Options{
		IncludeHeader: opts.IncludeHeader,
		IncludeBody:   opts.IncludeBody,
		ExcludeHeader: opts.ExcludeHeader,
		ExcludeBody:   opts.ExcludeBody,
	})
	if err != nil {
		return nil, err
	}

	return &Batch{
		opts:      opts,
		filter:    f,
		logger:    logger,
		observers: observers,
		tracker:   state.NewMemoryTracker(),
	}, nil
}

// Run iterates the archive. The returned error covers archive-level
// I/O only; per-message outcomes land in the observed events.
func (b *Batch) Run() error {
	return Read(b.opts.Path, b.handleMessage)
}

func (b *Batch) handleMessage(idx int, raw []byte) error {
	msg := describeMessage(raw)
	b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeScanned, MessageID: msg.ID})

	if !b.filter.AllowsRaw(raw) {
		b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeFiltered, MessageID: msg.ID})
		return nil
	}

	if b.tracker.AlreadyProcessed(msg.Hash) {
		prev, _ := b.tracker.ProcessedID(msg.Hash)
		b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeDuplicate, MessageID: msg.ID, Detail: prev})
		return nil
	}
	b.tracker.MarkProcessed(msg.Hash, msg.ID)

	outDir := filepath.Join(b.opts.OutDir, dirName(idx, msg.ID))
	result, err := extractor.Run(raw, outDir, b.logger)
	switch {
	case err == nil:
		b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeExtracted, MessageID: msg.ID, Detail: outDir})
		if b.logger != nil {
			b.logger.Debug("extracted signed message", "messageID", msg.ID, "size", msg.Size, "message", result.MessagePath, "signature", result.SignaturePath)
		}
	case errors.Is(err, rawmime.ErrUnexpectedMediaType), errors.Is(err, rawmime.ErrMissingContentType):
		// not a signed message, not an error in an archive walk
		b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeSkipped, MessageID: msg.ID})
	default:
		b.emit(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeError, MessageID: msg.ID, Err: fmt.Errorf("message %d: %w", idx, err)})
	}

	return nil
}

func (b *Batch) emit(evt stats.Event) {
	for _, obs := range b.observers {
		obs.Observe(evt)
	}
}

// describeMessage pulls the Message-Id for naming and logging and
// hashes the raw bytes for within-run duplicate detection. Nothing here
// feeds the artifact bytes.
func describeMessage(raw []byte) model.RawMessage {
	sum := sha256.Sum256(raw)

	msg := model.RawMessage{
		Hash: base64.StdEncoding.EncodeToString(sum[:]),
		Size: int64(len(raw)),
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return msg
	}

	id := strings.TrimSpace(parsed.Header.Get("Message-Id"))
	if id == "" {
		id = strings.TrimSpace(parsed.Header.Get("Message-ID"))
	}
	msg.ID = strings.Trim(id, " <>")
	return msg
}

// dirName builds a stable per-message directory name: a sequence number
// plus a sanitized Message-Id suffix when one exists.
func dirName(idx int, id string) string {
	name := fmt.Sprintf("msg-%04d", idx+1)
	if id == "" {
		return name
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}
	return name + "-" + sanitized
}

package responder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	continuationPrefix = "continuing from: \n\n > "
	continuationSuffix = " \n\n"
	continuationFooter = "\n\n `continued in next message:`\n "
)

// comfortCeiling is the content length at which pagination triggers. It
// leaves headroom below the hard maximum for a continuation-link footer.
func (r *Responder) comfortCeiling() int {
	return int(float64(r.opts.MaxMessageLength) * r.opts.ComfortRatio)
}

func (r *Responder) currentID() string {
	return r.sess.messages[r.sess.current].ID
}

// apply is the message writer: it normalizes one flushed chunk, records it in
// the session transcript, strips the termination marker, and renders the
// remainder onto the open output message (delegating to the paginator when
// the comfortable ceiling would be exceeded). The transforms run in a fixed
// order - name strip, transcript append, marker strip - so the transcript
// stays an exact order-preserving concatenation of delivered text.
func (r *Responder) apply(ctx context.Context, chunk string) error {
	if r.opts.ResponderName != "" {
		if echo := r.opts.ResponderName + ":"; strings.HasPrefix(chunk, echo) {
			r.logger.Debug("stripping responder name echo from chunk", "name", r.opts.ResponderName)
			chunk = strings.TrimPrefix(chunk, echo)
		}
	}

	r.sess.transcript.WriteString(chunk)

	stop := false
	if r.opts.StopMarker != "" && strings.Contains(chunk, r.opts.StopMarker) {
		r.logger.Debug("termination marker received, stopping stream")
		stop = true
		chunk = strings.ReplaceAll(chunk, r.opts.StopMarker, "")
	}

	if chunk != "" {
		if len(r.sess.buffer)+len(chunk) > r.comfortCeiling() {
			if err := r.paginate(ctx, chunk); err != nil {
				return err
			}
		} else {
			r.sess.buffer += chunk
			if err := r.editCurrent(ctx); err != nil {
				return err
			}
		}
		r.sess.dirty = true
	}

	if stop {
		r.stopped.Store(true)
	}
	return nil
}

// editCurrent issues a single edit of the open message carrying its entire
// accumulated content (the surface has no append primitive) and mirrors the
// new content into the message chain.
func (r *Responder) editCurrent(ctx context.Context) error {
	start := time.Now()
	err := r.surface.EditMessage(ctx, r.currentID(), r.sess.buffer)
	r.logSurfaceCall("edit_message", r.currentID(), start, err)
	if err != nil {
		return fmt.Errorf("edit message %s: %w", r.currentID(), err)
	}
	r.sess.messages[r.sess.current].Content = r.sess.buffer
	return nil
}

// Optional logger upgrades matching logging.ChatRelayLogger's domain helpers.
// Plain Loggers get the standard debug lines only.
type surfaceCallLogger interface {
	LogSurfaceCall(op, messageID string, dur time.Duration, err error)
}

type flushLogger interface {
	LogStreamFlush(fragments, bytes int, dur time.Duration)
}

func (r *Responder) logSurfaceCall(op, messageID string, start time.Time, err error) {
	if sl, ok := r.logger.(surfaceCallLogger); ok {
		sl.LogSurfaceCall(op, messageID, time.Since(start), err)
	}
}

// paginate handles a chunk that would overflow the open message. The chunk
// is split into slices on rune boundaries; each slice seeds a new
// continuation message, the previous message is frozen with a footer linking
// forward, and the new message becomes the open one.
//
// Invariant: once a message is frozen here its content is never edited again
// and fits the hard maximum including the footer; the new open message
// starts at its seed content, at or below the comfortable ceiling.
func (r *Responder) paginate(ctx context.Context, chunk string) error {
	comfy := r.comfortCeiling()
	r.logger.Debug("chunk overflows comfortable ceiling, continuing in next message",
		"chunk_len", len(chunk), "ceiling", comfy)

	// Slices leave room for the continuation scaffolding so a freshly
	// seeded message starts within the comfortable ceiling. Degenerate
	// ceilings smaller than the scaffolding fall back to raw slices.
	step := comfy - len(r.opts.MessagePrefix) - len(continuationPrefix) - len(continuationSuffix)
	if step <= 0 {
		step = comfy
	}

	for start := 0; start < len(chunk); {
		end := start + step
		if end >= len(chunk) {
			end = len(chunk)
		} else {
			// Never cut a multi-byte rune in half.
			for end > start && !utf8.RuneStart(chunk[end]) {
				end--
			}
			if end == start {
				_, size := utf8.DecodeRuneInString(chunk[start:])
				end = start + size
			}
		}
		slice := chunk[start:end]
		seed := r.opts.MessagePrefix + continuationPrefix + slice + continuationSuffix

		createStart := time.Now()
		next, err := r.surface.CreateMessage(ctx, r.currentID(), seed)
		r.logSurfaceCall("create_message", r.currentID(), createStart, err)
		if err != nil {
			return fmt.Errorf("create continuation message: %w", err)
		}

		r.sess.buffer += continuationFooter + next.Link()
		if err := r.editCurrent(ctx); err != nil {
			return err
		}

		next.Content = seed
		r.sess.messages = append(r.sess.messages, next)
		r.sess.current++
		r.sess.buffer = seed
		start = end
	}
	return nil
}

// finalize runs once, at shutdown: a final edit of the open message if its
// buffered content was never rendered, then - when the chain paginated - the
// full transcript is uploaded as an attachment on the last message.
func (r *Responder) finalize(ctx context.Context) error {
	if r.sess.dirty && r.sess.buffer != r.sess.messages[r.sess.current].Content {
		if err := r.editCurrent(ctx); err != nil {
			return err
		}
	}
	if len(r.sess.messages) > 1 {
		return r.attachTranscript(ctx)
	}
	return nil
}

// attachTranscript serializes the full transcript to a temporary file and
// uploads it as an attachment on the last output message. The temporary file
// is removed regardless of upload success or failure.
func (r *Responder) attachTranscript(ctx context.Context) error {
	tmp, err := os.CreateTemp("", "transcript-*.md")
	if err != nil {
		return fmt.Errorf("create transcript file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(r.Transcript()); err != nil {
		return fmt.Errorf("write transcript file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync transcript file: %w", err)
	}
	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return fmt.Errorf("read transcript file: %w", err)
	}

	r.logger.Debug("uploading full transcript as attachment", "bytes", len(data))
	start := time.Now()
	err = r.surface.UploadAttachment(ctx, r.currentID(), data, filepath.Base(tmp.Name()))
	r.logSurfaceCall("upload_attachment", r.currentID(), start, err)
	if err != nil {
		return fmt.Errorf("upload transcript attachment: %w", err)
	}
	return nil
}

// Package relay implements the message bridge between background workers
// and the foreground context that owns the session store.
//
// A background caller sends one request carrying its own single-use reply
// port and waits for one reply. There is no retry. The wait is bounded by the
// bridge timeout, and a missing foreground or a missing reply produce an
// error payload instead of a Go error.
package relay

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"stayauth/internal/domain"
	"stayauth/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TypeGetAuthData asks the foreground for the cached offline session
const TypeGetAuthData = "GET_AUTH_DATA"

// Error payloads carried by replies
const (
	ErrMsgNoAuthData  = "No auth data available"
	ErrMsgUnavailable = "Foreground unavailable"
	ErrMsgTimeout     = "Relay timed out"
	ErrMsgUnsupported = "Unsupported message type"
)

// DefaultTimeout bounds a request when none is configured
const DefaultTimeout = 5 * time.Second

// Message is the request body sent by a background worker
type Message struct {
	Type string `json:"type"`
}

// Reply is either {user, token, offline:true} or {error}
type Reply struct {
	User    *domain.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
	Offline bool         `json:"offline,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Session converts a data reply into an offline session, nil for error replies
func (r Reply) Session() *domain.Session {
	if r.Error != "" || r.User == nil {
		return nil
	}
	return &domain.Session{
		User:       *r.User,
		Token:      r.Token,
		Offline:    true,
		Provenance: domain.ProvenanceOffline,
	}
}

// Err maps the error payload onto the package sentinels
func (r Reply) Err() error {
	switch r.Error {
	case "":
		return nil
	case ErrMsgNoAuthData:
		return errors.ErrNoCachedSession
	case ErrMsgUnavailable:
		return errors.ErrRelayUnavailable
	case ErrMsgTimeout:
		return errors.ErrRelayTimeout
	default:
		return errors.NewInternalError(r.Error, nil)
	}
}

// ReplyFor builds the reply envelope for the result of an offline session
// read. It is the inverse of Session and Err.
func ReplyFor(session *domain.Session, err error) Reply {
	switch {
	case stderrors.Is(err, errors.ErrRelayUnavailable):
		return Reply{Error: ErrMsgUnavailable}
	case stderrors.Is(err, errors.ErrRelayTimeout):
		return Reply{Error: ErrMsgTimeout}
	case err != nil, session == nil:
		return Reply{Error: ErrMsgNoAuthData}
	}
	user := session.User
	return Reply{User: &user, Token: session.Token, Offline: true}
}

// SessionReader is the foreground's view of the offline cache
type SessionReader interface {
	LoadOffline(ctx context.Context) (*domain.Session, error)
}

// request pairs a message with its reply port
type request struct {
	id      string
	message Message
	reply   chan<- Reply
}

// Bridge carries requests from background callers to the foreground loop
type Bridge struct {
	requests chan request
	timeout  time.Duration
	attached atomic.Int32
	logger   *zap.Logger
}

// NewBridge creates a bridge. A timeout <= 0 waits on the caller's context only.
func NewBridge(timeout time.Duration, logger *zap.Logger) *Bridge {
	return &Bridge{
		requests: make(chan request),
		timeout:  timeout,
		logger:   logger,
	}
}

// Attached reports whether a foreground loop is serving requests
func (b *Bridge) Attached() bool {
	return b.attached.Load() > 0
}

// Serve answers requests from the foreground context until ctx is done
func (b *Bridge) Serve(ctx context.Context, reader SessionReader) error {
	b.attached.Add(1)
	defer b.attached.Add(-1)

	b.logger.Info("Relay foreground attached")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Relay foreground detached")
			return ctx.Err()
		case req := <-b.requests:
			req.reply <- b.handle(ctx, req, reader)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, req request, reader SessionReader) Reply {
	log := b.logger.With(zap.String("relay_id", req.id), zap.String("type", req.message.Type))

	if req.message.Type != TypeGetAuthData {
		log.Warn("Unsupported relay message")
		return Reply{Error: ErrMsgUnsupported}
	}

	session, err := reader.LoadOffline(ctx)
	switch {
	case err != nil:
		log.Warn("Offline session read failed", zap.Error(err))
		return Reply{Error: ErrMsgNoAuthData}
	case session == nil:
		log.Debug("No offline session to relay")
	default:
		log.Debug("Relaying offline session", zap.String("user_id", session.User.ID))
	}
	return ReplyFor(session, nil)
}

// RequestAuthData sends GET_AUTH_DATA and waits for the single reply
func (b *Bridge) RequestAuthData(ctx context.Context) Reply {
	return b.Send(ctx, Message{Type: TypeGetAuthData})
}

// Send performs one request/reply exchange
func (b *Bridge) Send(ctx context.Context, message Message) Reply {
	if !b.Attached() {
		b.logger.Debug("Relay request without foreground", zap.String("type", message.Type))
		return Reply{Error: ErrMsgUnavailable}
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	// Buffered so a late foreground reply never blocks the serve loop
	reply := make(chan Reply, 1)
	req := request{id: uuid.NewString(), message: message, reply: reply}

	select {
	case b.requests <- req:
	case <-ctx.Done():
		b.logger.Warn("Relay request not accepted", zap.String("relay_id", req.id), zap.Error(ctx.Err()))
		return Reply{Error: ErrMsgUnavailable}
	}

	select {
	case r := <-reply:
		return r
	case <-ctx.Done():
		b.logger.Warn("Relay reply timed out", zap.String("relay_id", req.id), zap.Error(ctx.Err()))
		return Reply{Error: ErrMsgTimeout}
	}
}

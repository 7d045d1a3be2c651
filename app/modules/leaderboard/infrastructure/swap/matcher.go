// Package swap pairs reciprocal tag swap requests. Two players who each ask
// for the other's tag get their tags exchanged; a request that finds no
// counterpart before the timeout expires.
package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	"github.com/Black-And-White-Club/tcr-bot/app/eventbus"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// DefaultTimeout is used when the matcher is built with a non-positive timeout.
const DefaultTimeout = 15 * time.Minute

// Leaderboard is what the matcher needs from the Tag Ranking Engine.
type Leaderboard interface {
	GetUserTag(ctx context.Context, userID sharedtypes.DiscordID) (*leaderboardtypes.LeaderboardEntry, error)
	GetUserByTagNumber(ctx context.Context, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	SwapTags(ctx context.Context, requestorID, targetID sharedtypes.DiscordID) ([]leaderboardtypes.TagChange, error)
}

type pending struct {
	req   SwapRequest
	timer *time.Timer
}

// Matcher consumes swap requests. All pending state is owned by the
// goroutine running Run.
type Matcher struct {
	board      Leaderboard
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
	timeout    time.Duration

	ready chan struct{}

	// Only touched by Run.
	pending     map[string]*pending
	byRequestor map[sharedtypes.DiscordID]string
	expired     chan *pending
	done        chan struct{}
}

// NewMatcher creates a Matcher.
func NewMatcher(board Leaderboard, publisher message.Publisher, subscriber message.Subscriber, logger *slog.Logger, timeout time.Duration) *Matcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Matcher{
		board:       board,
		publisher:   publisher,
		subscriber:  subscriber,
		logger:      logger.With(slog.String("component", "swap_matcher")),
		timeout:     timeout,
		ready:       make(chan struct{}),
		pending:     make(map[string]*pending),
		byRequestor: make(map[sharedtypes.DiscordID]string),
		expired:     make(chan *pending),
		done:        make(chan struct{}),
	}
}

// Ready is closed once Run has subscribed to the request topic.
func (m *Matcher) Ready() <-chan struct{} { return m.ready }

// Run processes requests until ctx is cancelled or the subscription closes.
// It must be called at most once.
func (m *Matcher) Run(ctx context.Context) error {
	msgs, err := m.subscriber.Subscribe(ctx, TopicSwapRequested)
	if err != nil {
		return fmt.Errorf("failed to subscribe to swap requests: %w", err)
	}
	close(m.ready)
	m.logger.InfoContext(ctx, "Swap matcher running", slog.Duration("timeout", m.timeout))

	defer close(m.done)
	defer m.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			m.handle(ctx, msg)
			msg.Ack()
		case p := <-m.expired:
			m.expire(ctx, p)
		}
	}
}

func (m *Matcher) handle(ctx context.Context, msg *message.Message) {
	var req SwapRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		m.logger.WarnContext(ctx, "Dropping malformed swap request",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	logger := m.logger.With(
		slog.String("request_id", req.RequestID),
		slog.String("requestor_id", string(req.RequestorID)),
		slog.Int("target_tag", int(req.TargetTag)),
	)

	if _, dup := m.pending[req.RequestID]; dup {
		logger.InfoContext(ctx, "Ignoring redelivered swap request")
		return
	}
	if req.RequestorID == "" {
		m.fail(ctx, req, "requestor ID cannot be empty")
		return
	}
	own, err := m.board.GetUserTag(ctx, req.RequestorID)
	if err != nil {
		m.fail(ctx, req, apperrors.Message(err))
		return
	}
	if own == nil {
		m.fail(ctx, req, "requestor does not hold a tag")
		return
	}
	if own.TagNumber == req.TargetTag {
		m.fail(ctx, req, "cannot swap for your own tag")
		return
	}
	holder, err := m.board.GetUserByTagNumber(ctx, req.TargetTag)
	if err != nil {
		m.fail(ctx, req, apperrors.Message(err))
		return
	}
	if holder == nil {
		m.fail(ctx, req, fmt.Sprintf("tag %d is not assigned", req.TargetTag))
		return
	}

	// A newer request from the same player replaces the older one.
	if prevID, ok := m.byRequestor[req.RequestorID]; ok {
		logger.InfoContext(ctx, "Replacing earlier swap request", slog.String("previous_request_id", prevID))
		m.drop(prevID)
	}

	if counterpart := m.findCounterpart(holder.UserID, own.TagNumber); counterpart != nil {
		m.drop(counterpart.req.RequestID)
		m.execute(ctx, req, counterpart)
		return
	}

	p := &pending{req: req}
	id := req.RequestID
	p.timer = time.AfterFunc(m.timeout, func() {
		select {
		case m.expired <- p:
		case <-m.done:
		}
	})
	m.pending[id] = p
	m.byRequestor[req.RequestorID] = id
	logger.InfoContext(ctx, "Swap request pending")
}

// findCounterpart returns holderID's pending request for wantTag.
func (m *Matcher) findCounterpart(holderID sharedtypes.DiscordID, wantTag sharedtypes.TagNumber) *pending {
	id, ok := m.byRequestor[holderID]
	if !ok {
		return nil
	}
	p := m.pending[id]
	if p == nil || p.req.TargetTag != wantTag {
		return nil
	}
	return p
}

func (m *Matcher) execute(ctx context.Context, req SwapRequest, counterpart *pending) {
	changes, err := m.board.SwapTags(ctx, req.RequestorID, counterpart.req.RequestorID)
	if err != nil {
		reason := apperrors.Message(err)
		m.fail(ctx, req, reason)
		m.fail(ctx, counterpart.req, reason)
		return
	}
	m.publish(ctx, TopicSwapCompleted, req.RequestID, SwapCompleted{
		RequestID:        req.RequestID,
		MatchedRequestID: counterpart.req.RequestID,
		Changes:          changes,
	})
	m.logger.InfoContext(ctx, "Swap completed",
		slog.String("request_id", req.RequestID),
		slog.String("matched_request_id", counterpart.req.RequestID),
	)
}

// expire ignores timers that fired after their request was dropped or
// replaced.
func (m *Matcher) expire(ctx context.Context, p *pending) {
	id := p.req.RequestID
	if m.pending[id] != p {
		return
	}
	m.drop(id)
	m.publish(ctx, TopicSwapExpired, id, SwapExpired{
		RequestID:   id,
		RequestorID: p.req.RequestorID,
		TargetTag:   p.req.TargetTag,
	})
}

func (m *Matcher) drop(id string) {
	p, ok := m.pending[id]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(m.pending, id)
	if m.byRequestor[p.req.RequestorID] == id {
		delete(m.byRequestor, p.req.RequestorID)
	}
}

func (m *Matcher) stopTimers() {
	for id := range m.pending {
		m.drop(id)
	}
}

func (m *Matcher) fail(ctx context.Context, req SwapRequest, reason string) {
	m.logger.InfoContext(ctx, "Swap request rejected",
		slog.String("request_id", req.RequestID),
		slog.String("reason", reason),
	)
	m.publish(ctx, TopicSwapFailed, req.RequestID, SwapFailed{
		RequestID:   req.RequestID,
		RequestorID: req.RequestorID,
		TargetTag:   req.TargetTag,
		Reason:      reason,
	})
}

func (m *Matcher) publish(ctx context.Context, topic, correlationID string, payload any) {
	msg, err := eventbus.NewMessage(correlationID, payload)
	if err == nil {
		err = m.publisher.Publish(topic, msg)
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to publish swap event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

// Submit publishes a new swap request and returns it with its assigned ID.
func Submit(publisher message.Publisher, requestorID sharedtypes.DiscordID, targetTag sharedtypes.TagNumber) (SwapRequest, error) {
	if requestorID == "" {
		return SwapRequest{}, apperrors.EmptyIdentifier("SubmitSwap")
	}
	if targetTag <= 0 {
		return SwapRequest{}, apperrors.Validation("SubmitSwap", "tag number must be positive")
	}
	req := SwapRequest{
		RequestID:   uuid.NewString(),
		RequestorID: requestorID,
		TargetTag:   targetTag,
	}
	msg, err := eventbus.NewMessage(req.RequestID, req)
	if err != nil {
		return SwapRequest{}, err
	}
	if err := publisher.Publish(TopicSwapRequested, msg); err != nil {
		return SwapRequest{}, apperrors.Persistence("SubmitSwap", err)
	}
	return req, nil
}

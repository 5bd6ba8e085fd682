package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/worker"
)

// Defaults for the simulated counterpart reply and the notification banner
const (
	DefaultReplyDelay      = 2500 * time.Millisecond
	DefaultNotificationTTL = 4 * time.Second
)

const simulatedReplyText = "Thanks for your interest! Yes, the item is still available. Would you like to come see it?"

// Event types emitted to thread subscribers
const (
	EventMessage             = "message"
	EventNotification        = "notification"
	EventNotificationCleared = "notification_cleared"
)

// Event is one thread observation delivered to subscribers
type Event struct {
	Type      string              `json:"type"`
	ProductID string              `json:"productId"`
	Message   *domain.ChatMessage `json:"message,omitempty"`
	Unread    int                 `json:"unread"`
}

// Content is the payload of an outgoing message; at least one field must be
// set.
type Content struct {
	Text       string
	Attachment string
	Location   *domain.GeoPoint
}

// ConversationConfig tunes the simulated-reply behavior
type ConversationConfig struct {
	ReplyDelay      time.Duration
	NotificationTTL time.Duration
	// DisableAutoReply turns the simulated counterpart off entirely.
	DisableAutoReply bool
}

type threadState struct {
	open        bool
	unread      int
	notified    bool
	ended       bool
	clearNotify func()
	subscribers map[int]chan Event
	nextSub     int
}

// Conversations owns per-product message threads: durable appends, the
// simulated counterpart reply, and unread/notification bookkeeping. The
// durable store is the source of truth; a rejected append means the message
// was never sent.
type Conversations struct {
	chats     domain.ChatRepository
	catalog   domain.CatalogRepository
	scheduler *worker.ReplyScheduler
	logger    *slog.Logger
	cfg       ConversationConfig

	mu      sync.Mutex
	threads map[string]*threadState
}

// NewConversations creates the conversation manager
func NewConversations(
	chats domain.ChatRepository,
	catalog domain.CatalogRepository,
	scheduler *worker.ReplyScheduler,
	cfg ConversationConfig,
	logger *slog.Logger,
) *Conversations {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReplyDelay <= 0 {
		cfg.ReplyDelay = DefaultReplyDelay
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = DefaultNotificationTTL
	}
	return &Conversations{
		chats:     chats,
		catalog:   catalog,
		scheduler: scheduler,
		logger:    logger,
		cfg:       cfg,
		threads:   map[string]*threadState{},
	}
}

// Send appends the actor's message and schedules the simulated counterpart
// reply. It returns as soon as the append is durable.
func (c *Conversations) Send(actorID, productID string, content Content) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:         domain.NewID(),
		ProductID:  productID,
		SenderID:   actorID,
		Text:       content.Text,
		Attachment: content.Attachment,
		Location:   content.Location,
		CreatedAt:  time.Now().UnixMilli(),
	}
	if err := c.chats.Append(msg); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("message not sent: %w", err)
	}
	metrics.ObserveMessage("user")
	c.emit(productID, Event{Type: EventMessage, ProductID: productID, Message: &msg})

	if !c.cfg.DisableAutoReply {
		c.scheduleReply(productID)
	}
	return msg, nil
}

// History returns the full thread sorted by CreatedAt ascending
func (c *Conversations) History(productID string) ([]domain.ChatMessage, error) {
	return c.chats.ListByProduct(productID)
}

// Open marks the thread panel open: unread drops to zero and any pending
// notification is suppressed, atomically with respect to reply delivery.
func (c *Conversations) Open(productID string) {
	c.mu.Lock()
	t := c.thread(productID)
	t.open = true
	t.unread = 0
	clear := t.clearNotify
	t.clearNotify = nil
	wasNotified := t.notified
	t.notified = false
	c.mu.Unlock()

	if clear != nil {
		clear()
	}
	if wasNotified {
		c.emit(productID, Event{Type: EventNotificationCleared, ProductID: productID})
	}
}

// Close marks the thread panel closed; replies arriving now count as unread
func (c *Conversations) Close(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thread(productID).open = false
}

// End tears the thread's transient state down. An in-flight simulated reply
// still persists durably, but no unread or notification state is touched
// afterwards.
func (c *Conversations) End(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.thread(productID)
	t.ended = true
	if t.clearNotify != nil {
		t.clearNotify()
		t.clearNotify = nil
	}
	for id, ch := range t.subscribers {
		close(ch)
		delete(t.subscribers, id)
	}
}

// Unread returns the thread's unread counter
func (c *Conversations) Unread(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thread(productID).unread
}

// Notified reports whether a notification banner is currently surfaced
func (c *Conversations) Notified(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thread(productID).notified
}

// Subscribe returns a channel of thread events and an unsubscribe function
func (c *Conversations) Subscribe(productID string) (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.thread(productID)
	t.nextSub++
	id := t.nextSub
	ch := make(chan Event, 16)
	t.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := t.subscribers[id]; ok {
			close(sub)
			delete(t.subscribers, id)
		}
	}
}

// scheduleReply queues the simulated counterpart reply. The counterpart is
// the listing's seller.
func (c *Conversations) scheduleReply(productID string) {
	c.scheduler.Schedule(c.cfg.ReplyDelay, func() {
		c.deliverReply(productID)
	})
}

// deliverReply appends the counterpart reply. The append is a durable side
// effect and happens even when nobody is watching the thread anymore; only
// the transient unread/notification state is gated on thread liveness.
func (c *Conversations) deliverReply(productID string) {
	product, err := c.catalog.GetByID(productID)
	if err != nil {
		c.logger.Warn("skipping simulated reply, product gone",
			slog.String("product_id", productID),
		)
		return
	}

	reply := domain.ChatMessage{
		ID:        domain.NewID(),
		ProductID: productID,
		SenderID:  product.SellerID,
		Text:      simulatedReplyText,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := c.chats.Append(reply); err != nil {
		c.logger.Error("failed to persist simulated reply",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveMessage("simulated_reply")

	c.mu.Lock()
	t := c.thread(productID)
	if t.ended {
		c.mu.Unlock()
		return
	}
	notify := !t.open
	var unread int
	if notify {
		t.unread++
		unread = t.unread
		t.notified = true
		if t.clearNotify != nil {
			t.clearNotify()
		}
		t.clearNotify = c.scheduler.Schedule(c.cfg.NotificationTTL, func() {
			c.expireNotification(productID)
		})
	}
	c.mu.Unlock()

	c.emit(productID, Event{Type: EventMessage, ProductID: productID, Message: &reply, Unread: unread})
	if notify {
		metrics.ObserveNotification()
		c.emit(productID, Event{Type: EventNotification, ProductID: productID, Unread: unread})
	}
}

// expireNotification hides the time-boxed banner; the unread count stays
func (c *Conversations) expireNotification(productID string) {
	c.mu.Lock()
	t := c.thread(productID)
	if t.ended || !t.notified {
		c.mu.Unlock()
		return
	}
	t.notified = false
	t.clearNotify = nil
	unread := t.unread
	c.mu.Unlock()

	c.emit(productID, Event{Type: EventNotificationCleared, ProductID: productID, Unread: unread})
}

// thread returns the state for productID; the caller holds c.mu
func (c *Conversations) thread(productID string) *threadState {
	t, ok := c.threads[productID]
	if !ok {
		t = &threadState{subscribers: map[int]chan Event{}}
		c.threads[productID] = t
	}
	return t
}

func (c *Conversations) emit(productID string, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.thread(productID)
	for _, ch := range t.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscribers drop events rather than blocking delivery.
		}
	}
}

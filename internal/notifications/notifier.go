package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes chat events into Redis channels so every API instance
// sees them. A nil client turns it into a no-op, which keeps single-instance
// and test setups working without Redis.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishChatMessage publishes a chat message to an offer's conversation
// channel.
func (n *Notifier) PublishChatMessage(ctx context.Context, offerID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("chat:offer:%d", offerID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// PublishTypingIndicator publishes a typing indicator to an offer's
// conversation channel.
func (n *Notifier) PublishTypingIndicator(ctx context.Context, offerID, userID uint, name string, isTyping bool) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("typing:offer:%d", offerID)
	event := ChatEvent{
		Type:       "typing",
		OfferID:    offerID,
		UserID:     userID,
		SenderName: name,
		Payload:    map[string]interface{}{"is_typing": isTyping},
	}
	eventJSON, _ := json.Marshal(event)
	return n.rdb.Publish(ctx, channel, string(eventJSON)).Err()
}

// StartChatSubscriber subscribes to the conversation patterns and calls
// onMessage for each incoming message.
func (n *Notifier) StartChatSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:offer:*", "typing:offer:*")
	ch := sub.Channel()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()
	go func() {
		for msg := range ch {
			onMessage(msg.Channel, msg.Payload)
		}
	}()

	return nil
}

// ConversationChannel derives the chat channel name for an offer.
func ConversationChannel(offerID uint) string {
	return "chat:offer:" + strconv.FormatUint(uint64(offerID), 10)
}

package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
)

const relayChannel = "typing-board.broadcast"

// Relay mirrors room broadcasts over a Redis pub/sub channel so several
// instances can fan out the same room. Every envelope carries the
// publishing instance's id; a subscriber skips its own messages. Room
// state stays local to each instance — the relay only forwards outbound
// notifications.
type Relay struct {
	client     *redis.Client
	instanceID string
}

type relayEnvelope struct {
	Origin  string        `json:"origin"`
	RoomID  string        `json:"roomId"`
	Message *room.Message `json:"message"`
}

func NewRelay(client *redis.Client, instanceID string) *Relay {
	return &Relay{
		client:     client,
		instanceID: instanceID,
	}
}

// Publish implements room.Relay. Failures are logged and dropped; local
// delivery has already happened by the time this runs.
func (r *Relay) Publish(roomID string, msg *room.Message) {
	payload, err := json.Marshal(relayEnvelope{
		Origin:  r.instanceID,
		RoomID:  roomID,
		Message: msg,
	})
	if err != nil {
		log.Printf("relay: marshal envelope: %v", err)
		return
	}

	if err := r.client.Publish(context.Background(), relayChannel, payload).Err(); err != nil {
		log.Printf("relay: publish to %s: %v", relayChannel, err)
	}
}

// Run subscribes to the relay channel and feeds peer broadcasts into the
// coordinator until the subscription closes.
func (r *Relay) Run(ctx context.Context, rooms *room.Service) {
	subscriber := r.client.Subscribe(ctx, relayChannel)
	defer subscriber.Close()

	log.Printf("relay: subscribed to %s as instance %s", relayChannel, r.instanceID)
	for msg := range subscriber.Channel() {
		r.handlePayload(rooms, []byte(msg.Payload))
	}
	log.Printf("relay: subscription to %s closed", relayChannel)
}

func (r *Relay) handlePayload(rooms *room.Service, payload []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("relay: bad envelope: %v", err)
		return
	}
	if env.Origin == r.instanceID || env.Message == nil {
		return
	}
	rooms.DeliverRelayed(env.RoomID, env.Message)
}

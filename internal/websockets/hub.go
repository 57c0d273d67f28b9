package websockets

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// TopicAll receives every event. New clients start here until they send
// a subscribe message narrowing to specific topics.
const TopicAll = "*"

type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	topicChannels map[string]map[*Client]bool

	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan []byte),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		topicChannels: make(map[string]map[*Client]bool),
	}
}

// PublishEvent wraps a payload in an event envelope and delivers it to
// clients subscribed to the event's topic or to the wildcard topic.
func (h *Hub) PublishEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling event payload for %s: %v", eventType, err)
		return
	}

	message, err := json.Marshal(Message{
		Type: MessageType(eventType),
		Data: data,
		At:   time.Now(),
	})
	if err != nil {
		log.Printf("Error marshaling event %s: %v", eventType, err)
		return
	}

	h.BroadcastToTopic(eventType, message)
	h.BroadcastToTopic(TopicAll, message)
}

func (h *Hub) RegisterTopicClient(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topicChannels[topic]; !ok {
		h.topicChannels[topic] = make(map[*Client]bool)
	}
	h.topicChannels[topic][client] = true
}

// SubscribeTopics replaces a client's wildcard membership with the given
// topic list, so narrowed clients are not delivered twice.
func (h *Hub) SubscribeTopics(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topicChannels[TopicAll]; ok {
		delete(clients, client)
	}
	for _, topic := range topics {
		if _, ok := h.topicChannels[topic]; !ok {
			h.topicChannels[topic] = make(map[*Client]bool)
		}
		h.topicChannels[topic][client] = true
	}
}

func (h *Hub) BroadcastToTopic(topic string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.topicChannels[topic] {
		select {
		case client.send <- message:
		default:
			h.drop(client)
		}
	}
}

// drop closes the client's send channel and removes it from the client
// set and every topic, so a client is never closed twice. Callers hold
// h.mu.
func (h *Hub) drop(client *Client) {
	close(client.send)
	delete(h.clients, client)
	for _, clients := range h.topicChannels {
		delete(clients, client)
	}
}

// Run serializes register and unregister traffic. The client set is
// also mutated by BroadcastToTopic eviction from other goroutines, so
// every access here takes h.mu as well.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

package pubsub

import (
	"context"
	"encoding/json"
)

// Topic names
const (
	TopicDataset       = "dataset"  // Dataset loads and reload failures
	sessionTopicPrefix = "session/" // One topic per canvas session
)

// SessionTopic returns the topic carrying graph changes of one session
func SessionTopic(sessionID string) string {
	return sessionTopicPrefix + sessionID
}

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "dataset", "session/<id>")
	Type    string          `json:"type"`    // Event type (e.g., "expanded", "collapsed", "changed", "reset")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// DropTopic ends every subscription of a topic and forgets its buffer
	DropTopic(topic string)

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// DatasetStatus is the payload of dataset topic events
type DatasetStatus struct {
	State   string `json:"state"`             // loaded, reloaded, error
	Name    string `json:"name"`              // Dataset name
	Source  string `json:"source"`            // Reference the dataset was loaded from
	Nodes   int    `json:"nodes"`             // Nodes in the hierarchy
	Depth   int    `json:"depth"`             // Levels below the root
	Message string `json:"message,omitempty"` // Human-readable detail, e.g. a parse error
}

// GraphEvent is the payload of session topic events
type GraphEvent struct {
	SessionID string      `json:"sessionId"`
	Version   int         `json:"version"` // Session graph version after the change
	NodeID    string      `json:"nodeId,omitempty"`
	Diff      interface{} `json:"diff"`
}

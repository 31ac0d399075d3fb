// Package graph publishes site content to a knowledge graph over NATS and
// wraps the query replies in passive accessor types.
//
// All operations degrade gracefully when no NATS connection is configured:
// publishing becomes a no-op and lookups report ErrNotConnected, so the
// site keeps working without a graph backend.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vellum-ws/vellum/domain"
)

var (
	// ErrNotConnected is returned by lookups when no NATS connection is configured.
	ErrNotConnected = errors.New("graph: not connected")
)

// Client talks to the knowledge graph over NATS. The zero value and a nil
// pointer are both usable and behave as a disconnected client.
type Client struct {
	conn   *nats.Conn
	source string
}

// NewClient wraps an established NATS connection. The source string is
// recorded on every published triple for provenance. A nil connection is
// allowed and yields a disconnected client.
func NewClient(conn *nats.Conn, source string) *Client {
	return &Client{
		conn:   conn,
		source: source,
	}
}

// Connected reports whether the client has a usable NATS connection.
func (c *Client) Connected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// PublishPage publishes a page entity to the graph ingest subject.
// It is a no-op when no NATS connection is configured.
func (c *Client) PublishPage(ctx context.Context, page *domain.Page) error {
	if c == nil || c.conn == nil {
		return nil
	}

	entityID := PageEntityID(page.Slug)
	now := time.Now()

	triples := []Triple{
		{
			Subject:    entityID,
			Predicate:  PredicateTitle,
			Object:     page.Title,
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  PredicateSlug,
			Object:     page.Slug,
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  PredicateSummary,
			Object:     page.Summary,
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  PredicateAuthor,
			Object:     page.AuthorID.String(),
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		},
		{
			Subject:    entityID,
			Predicate:  PredicateUpdatedAt,
			Object:     page.UpdatedAt.Format(time.RFC3339),
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		},
	}

	for _, tag := range page.Tags {
		triples = append(triples, Triple{
			Subject:    entityID,
			Predicate:  PredicateTag,
			Object:     tag,
			Source:     c.source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}

	payload := EntityPayload{
		ID:        entityID,
		Triples:   triples,
		UpdatedAt: now,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal page entity: %w", err)
	}

	if err := c.conn.Publish(IngestSubject, data); err != nil {
		return fmt.Errorf("publish page entity: %w", err)
	}

	return nil
}

// Lookup fetches a single entity from the graph and wraps the reply in a Thing.
func (c *Client) Lookup(ctx context.Context, entityID string) (*Thing, error) {
	payload, err := c.request(ctx, LookupSubject, entityID)
	if err != nil {
		return nil, err
	}
	return &Thing{payload: payload}, nil
}

// Describe fetches a concept definition from the graph and wraps the reply
// in a Concept.
func (c *Client) Describe(ctx context.Context, conceptID string) (*Concept, error) {
	payload, err := c.request(ctx, DescribeSubject, conceptID)
	if err != nil {
		return nil, err
	}
	return &Concept{payload: payload}, nil
}

func (c *Client) request(ctx context.Context, subject string, entityID string) (*EntityPayload, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNotConnected
	}

	query, err := json.Marshal(map[string]string{"id": entityID})
	if err != nil {
		return nil, fmt.Errorf("marshal graph query: %w", err)
	}

	msg, err := c.conn.RequestWithContext(ctx, subject, query)
	if err != nil {
		return nil, fmt.Errorf("graph query %s: %w", entityID, err)
	}

	var payload EntityPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal graph reply for %s: %w", entityID, err)
	}

	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph reply for %s: %w", entityID, err)
	}

	return &payload, nil
}

// PageEntityID generates a consistent entity ID for a page.
// Format: vellum.local.content.page.<slug>
func PageEntityID(slug string) string {
	return fmt.Sprintf("vellum.local.content.page.%s", slug)
}

// ConceptEntityID generates a consistent entity ID for a concept.
// Format: vellum.local.schema.concept.<name>
func ConceptEntityID(name string) string {
	return fmt.Sprintf("vellum.local.schema.concept.%s", name)
}

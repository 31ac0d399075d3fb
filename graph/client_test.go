package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vellum-ws/vellum/domain"
)

func TestClient_Disconnected(t *testing.T) {
	client := NewClient(nil, "vellum.test")

	assert.False(t, client.Connected())

	// Publishing without a connection is a silent no-op.
	err := client.PublishPage(context.Background(), &domain.Page{Slug: "hello"})
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), PageEntityID("hello"))
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = client.Describe(context.Background(), ConceptEntityID("article"))
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestClient_NilReceiver(t *testing.T) {
	var client *Client

	assert.False(t, client.Connected())
	require.NoError(t, client.PublishPage(context.Background(), &domain.Page{Slug: "hello"}))

	_, err := client.Lookup(context.Background(), PageEntityID("hello"))
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestEntityIDs(t *testing.T) {
	assert.Equal(t, "vellum.local.content.page.hello-vellum", PageEntityID("hello-vellum"))
	assert.Equal(t, "vellum.local.schema.concept.article", ConceptEntityID("article"))
}

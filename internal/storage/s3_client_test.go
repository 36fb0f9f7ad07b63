package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"journey-chat/internal/domain/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, publicBase string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), S3Config{
		Region:     "us-east-1",
		Bucket:     "chat-attachments",
		AccessKey:  "test",
		SecretKey:  "test",
		Endpoint:   "http://localhost:9000",
		PublicBase: publicBase,
		PresignTTL: 5 * time.Minute,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), S3Config{Region: "us-east-1"}, nil)
	assert.Error(t, err)
}

func TestPresignGet(t *testing.T) {
	c := newTestClient(t, "")

	signed, err := c.PresignGet(context.Background(), "rooms/journey_j1/photo.jpg")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/chat-attachments/rooms/journey_j1/photo.jpg"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))

	_, err = c.PresignGet(context.Background(), "")
	assert.Error(t, err)
}

func TestResolveAttachments(t *testing.T) {
	in := []message.Attachment{
		{Type: "image", Key: "a.jpg"},
		{Type: "link", URL: "https://example.com/x"},
	}

	public := newTestClient(t, "https://cdn.example.com/")
	out := public.ResolveAttachments(context.Background(), in)
	assert.Equal(t, "https://cdn.example.com/a.jpg", out[0].URL)
	assert.Equal(t, "https://example.com/x", out[1].URL)
	assert.Empty(t, in[0].URL, "input must not be modified")

	private := newTestClient(t, "")
	out = private.ResolveAttachments(context.Background(), in)
	assert.Contains(t, out[0].URL, "X-Amz-Signature")

	var none *Client
	assert.Equal(t, in, none.ResolveAttachments(context.Background(), in))
}

package webhookcreate

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignedRequest(
	t testing.TB,
	key ed25519.PrivateKey,
	body []byte,
) *http.Request {
	t.Helper()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	msg := append([]byte(timestamp), body...)
	sig := ed25519.Sign(key, msg)

	req := httptest.NewRequest(http.MethodPost, apiDiscordInteractions, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", timestamp)
	return req
}

func TestVerifyRequest(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	body := []byte(`{"type":1}`)

	tests := []struct {
		name   string
		req    func() *http.Request
		wantOK bool
	}{
		{
			name:   "valid",
			req:    func() *http.Request { return newSignedRequest(t, priv, body) },
			wantOK: true,
		},
		{
			name: "wrong key",
			req:  func() *http.Request { return newSignedRequest(t, otherPriv, body) },
		},
		{
			name: "tampered body",
			req: func() *http.Request {
				r := newSignedRequest(t, priv, body)
				r.Body = io.NopCloser(bytes.NewReader([]byte(`{"type":2}`)))
				return r
			},
		},
		{
			name: "missing signature",
			req: func() *http.Request {
				r := newSignedRequest(t, priv, body)
				r.Header.Del("X-Signature-Ed25519")
				return r
			},
		},
		{
			name: "signature not hex",
			req: func() *http.Request {
				r := newSignedRequest(t, priv, body)
				r.Header.Set("X-Signature-Ed25519", "zz")
				return r
			},
		},
		{
			name: "missing timestamp",
			req: func() *http.Request {
				r := newSignedRequest(t, priv, body)
				r.Header.Del("X-Signature-Timestamp")
				return r
			},
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				assert.Equal(t, tc.wantOK, verifyRequest(tc.req(), pub))
			},
		)
	}

	// the body can be read again after verification
	r := newSignedRequest(t, priv, body)
	require.True(t, verifyRequest(r, pub))
	again, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func newTestWebhookServer(t testing.TB) (*Bot, *DiscordWebhookServer, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	b, _ := newTestBot(t)
	b.discord.publicKey = pub
	b.runtimeWG = &sync.WaitGroup{}
	b.getInteractionHandlerFunc = func(_ context.Context, i *discordgo.InteractionCreate) InteractionHandler {
		return newStubInteractionHandler(t, i)
	}

	cfg := b.config.Discord.WebhookServer
	cfg.Enabled = true
	cfg.PublicKey = hex.EncodeToString(pub)
	srv, err := newWebhookServer(b, cfg)
	require.NoError(t, err)
	return b, srv, priv
}

func TestDiscordWebhookServer_NotReady(t *testing.T) {
	_, srv, priv := newTestWebhookServer(t)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, newSignedRequest(t, priv, []byte(`{"type":1}`)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDiscordWebhookServer_Ping(t *testing.T) {
	b, srv, priv := newTestWebhookServer(t)
	b.webhookInteractionHandler = webhookReceiveHandler(context.Background(), b)

	body, err := json.Marshal(
		discordgo.Interaction{
			ID:    "300000000000000001",
			AppID: b.config.Discord.ApplicationID,
			Type:  discordgo.InteractionPing,
		},
	)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, newSignedRequest(t, priv, body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp discordgo.InteractionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)
	assert.NotEmpty(t, w.Header().Get(xRequestIDHeader))
	b.runtimeWG.Wait()
}

func TestDiscordWebhookServer_RejectsBadSignature(t *testing.T) {
	b, srv, _ := newTestWebhookServer(t)
	b.webhookInteractionHandler = webhookReceiveHandler(context.Background(), b)

	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, newSignedRequest(t, otherPriv, []byte(`{"type":1}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}

func TestDiscordWebhookServer_BadBody(t *testing.T) {
	b, srv, priv := newTestWebhookServer(t)
	b.webhookInteractionHandler = webhookReceiveHandler(context.Background(), b)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, newSignedRequest(t, priv, []byte(`not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_RespondOnce(t *testing.T) {
	i := newCommandInteraction(t, newDiscordUser(t), CommandRoles)
	h := newWebhookHandler(newStubInteractionHandler(t, i))
	assert.Equal(t, discordInteractionReceiveMethodWebhook, h.InteractionReceiveMethod())

	first := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	require.NoError(t, h.Respond(context.Background(), first))
	assert.Error(t, h.Respond(context.Background(), first))
	assert.Same(t, first, <-h.responses)
}

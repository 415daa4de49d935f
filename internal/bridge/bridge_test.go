package bridge

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/classify"
	"github.com/nextlevelbuilder/goclaw/internal/msgbus"
	"github.com/nextlevelbuilder/goclaw/internal/orchestrator"
	"github.com/nextlevelbuilder/goclaw/internal/pairing"
	"github.com/nextlevelbuilder/goclaw/internal/router"
	"github.com/nextlevelbuilder/goclaw/internal/spawner"
)

func signNonce(secret, nonce []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(nonce)
	return hex.EncodeToString(mac.Sum(nil))
}

// E3 — channel -> agent -> channel round trip.
func TestChannelRoundTrip(t *testing.T) {
	sp := spawner.New(0)
	bus := msgbus.New(0)
	rt := router.New()
	orc := orchestrator.New(sp, bus, rt)

	slackAgent := sp.Spawn("slack_agent")
	defaultAgent := sp.Spawn("default_agent")
	gateway := sp.Spawn("gateway") // stands in for "the bridge" as an addressable sender
	bus.Register(gateway)

	rt.AddRoute(router.Route{
		Priority: 10,
		Target:   slackAgent,
		Conditions: []router.RouteCondition{
			{Kind: router.ConditionChannelType, Value: "slack"},
		},
	})

	orc.RegisterHandler(slackAgent, func(ctx context.Context, description string, args map[string]string) (string, error) {
		return "Agent reply: " + description, nil
	})

	b := New(nil, rt)
	msg := classify.ChannelMessage{ChannelType: "slack", SenderID: "u1", Text: "What is the weather today?"}
	target := b.RouteChannelMessage(msg, defaultAgent)
	if target != slackAgent {
		t.Fatalf("expected routing to slack_agent")
	}

	env := ChannelMessageToEnvelope(msg, gateway, target)
	if err := bus.Send(env); err != nil {
		t.Fatalf("send: %v", err)
	}
	orc.ProcessPending(context.Background())

	resp, ok := bus.Receive(gateway)
	if !ok {
		t.Fatalf("expected a reply envelope")
	}
	out := EnvelopeToChannelMessage(resp, "slack")
	if out.Text != "Agent reply: What is the weather today?" {
		t.Fatalf("unexpected reply text: %q", out.Text)
	}
}

// E4 — pairing revocation blocks routing.
func TestPairingRevocationBlocksRouting(t *testing.T) {
	rt := router.New()
	emailAgent := uuid.New()
	defaultAgent := uuid.New()
	rt.AddRoute(router.Route{
		Priority: 10,
		Target:   emailAgent,
		Conditions: []router.RouteCondition{
			{Kind: router.ConditionChannelType, Value: "email"},
		},
	})

	pm := pairing.New([]byte("secret"))
	c, _ := pm.CreateChallenge()
	req := pairing.VerifyRequest{
		ChallengeID:  c.ChallengeID,
		DeviceID:     "device-x",
		ResponseHMAC: signNonce([]byte("secret"), c.Nonce),
	}
	if err := pm.VerifyResponse(req); err != nil {
		t.Fatalf("pair device-x: %v", err)
	}

	b := New(pm, rt)
	msg := classify.ChannelMessage{ChannelType: "email", SenderID: "device-x"}
	if got := b.RouteChannelMessage(msg, defaultAgent); got != emailAgent {
		t.Fatalf("expected paired sender routed to email_agent, got %v", got)
	}

	stranger := classify.ChannelMessage{ChannelType: "email", SenderID: "stranger"}
	if got := b.RouteChannelMessage(stranger, defaultAgent); got != defaultAgent {
		t.Fatalf("expected unpaired stranger routed to default")
	}

	if err := pm.RevokeDevice("device-x"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got := b.RouteChannelMessage(msg, defaultAgent); got != defaultAgent {
		t.Fatalf("expected revoked device routed to default after revocation")
	}
}

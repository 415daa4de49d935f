// Package bridge implements the channel-agent bridge: converting
// ChannelMessages to/from agent envelopes and gating routing on device
// pairing (spec 4.J).
package bridge

import (
	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/classify"
	"github.com/nextlevelbuilder/goclaw/internal/msgbus"
	"github.com/nextlevelbuilder/goclaw/internal/router"
)

// Pairer is the subset of pairing.Manager the bridge depends on. Routing
// degrades gracefully to the default route when no Pairer is configured.
type Pairer interface {
	IsPaired(senderIDOrDeviceName string) bool
}

// Router is the subset of router.Router the bridge consults once a sender
// has passed the pairing gate.
type Router interface {
	Route(msg router.Routable, defaultAgent uuid.UUID) uuid.UUID
}

// Bridge wires channel messages into the agent mailbox system.
type Bridge struct {
	Pairer Pairer // optional; nil disables the pairing gate
	Router Router
}

// New creates a Bridge. pairer may be nil to disable pairing enforcement.
func New(pairer Pairer, rt Router) *Bridge {
	return &Bridge{Pairer: pairer, Router: rt}
}

type routable struct {
	channelType, senderID, text string
}

func (r routable) RouteChannelType() string { return r.channelType }
func (r routable) RouteSenderID() string    { return r.senderID }
func (r routable) RouteTextContent() string { return r.text }

// RouteChannelMessage applies the pairing gate and, if it passes (or no
// Pairer is configured), consults the Router. If a Pairer is configured and
// the sender is not currently paired, defaultAgent is returned unconditionally.
func (b *Bridge) RouteChannelMessage(msg classify.ChannelMessage, defaultAgent uuid.UUID) uuid.UUID {
	if b.Pairer != nil && !b.Pairer.IsPaired(msg.SenderID) {
		return defaultAgent
	}
	return b.Router.Route(routable{
		channelType: msg.ChannelType,
		senderID:    msg.SenderID,
		text:        msg.Text,
	}, defaultAgent)
}

// ChannelMessageToEnvelope builds a TaskRequest envelope from a channel
// message, carrying channel metadata in the request's args map so the
// handler (and any reply path) can recover channel/sender/thread context.
func ChannelMessageToEnvelope(msg classify.ChannelMessage, from, to uuid.UUID) msgbus.Envelope {
	args := map[string]string{
		"channel_type": msg.ChannelType,
		"sender":       msg.SenderID,
		"channel_id":   msg.ChannelID,
	}
	if msg.ThreadID != "" {
		args["thread_id"] = msg.ThreadID
	}
	for k, v := range msg.Metadata {
		args["metadata_"+k] = v
	}

	description := msg.Text
	if description == "" {
		description = "(no text content)"
	}

	return msgbus.NewTaskRequestEnvelope(from, to, description, args, msgbus.PriorityNormal)
}

// EnvelopeToChannelMessage extracts a TaskResult's output into an outbound
// ChannelMessage for delivery back over channelType.
func EnvelopeToChannelMessage(env msgbus.Envelope, channelType string) classify.ChannelMessage {
	text := ""
	if env.Payload.TaskResult != nil {
		text = env.Payload.TaskResult.Output
	}
	return classify.ChannelMessage{
		ID:          env.ID.String(),
		ChannelType: channelType,
		Text:        text,
	}
}

package providers

import (
	"context"
	"log/slog"

	"github.com/nextlevelbuilder/goclaw/internal/redact"
)

// RedactedProvider wraps a Provider so every outbound message and inbound
// response is passed through a Redactor before it reaches a log, an audit
// sink, or persisted conversation history. The underlying provider still
// receives the original, unredacted request — redaction is a logging-path
// gate, not a content filter on the call itself.
type RedactedProvider struct {
	inner    Provider
	redactor *redact.Redactor
	onLeak   func(count int, types []string)
}

// NewRedactedProvider wraps inner with redactor. onLeak, if non-nil, is
// invoked whenever a request or response contained secret material, so a
// caller can surface it in metrics or an audit trail without re-deriving
// the find.
func NewRedactedProvider(inner Provider, redactor *redact.Redactor, onLeak func(count int, types []string)) *RedactedProvider {
	return &RedactedProvider{inner: inner, redactor: redactor, onLeak: onLeak}
}

func (p *RedactedProvider) redactedRequestLog(req ChatRequest) {
	for _, m := range req.Messages {
		res := p.redactor.Redact(m.Content)
		if res.Count == 0 {
			continue
		}
		p.reportLeak(res)
		slog.Warn("secret material redacted from outbound message", "role", m.Role, "types", res.Types, "count", res.Count)
	}
}

func (p *RedactedProvider) redactedResponseLog(resp *ChatResponse) {
	if resp == nil {
		return
	}
	res := p.redactor.Redact(resp.Content)
	if res.Count == 0 {
		return
	}
	p.reportLeak(res)
	slog.Warn("secret material redacted from provider response", "types", res.Types, "count", res.Count)
}

func (p *RedactedProvider) reportLeak(res redact.Result) {
	if p.onLeak != nil {
		p.onLeak(res.Count, res.Types)
	}
}

// Chat logs the redacted form of request and response, then delegates to
// the wrapped provider unchanged.
func (p *RedactedProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p.redactedRequestLog(req)
	resp, err := p.inner.Chat(ctx, req)
	if err != nil {
		return resp, err
	}
	p.redactedResponseLog(resp)
	return resp, nil
}

// ChatStream redacts the final aggregated response the same way Chat does;
// individual streamed chunks are not redacted in place since they are
// fragments that may split a secret across chunk boundaries — the log-path
// gate operates on the assembled result.
func (p *RedactedProvider) ChatStream(ctx context.Context, req ChatRequest, onChunk func(StreamChunk)) (*ChatResponse, error) {
	p.redactedRequestLog(req)
	resp, err := p.inner.ChatStream(ctx, req, onChunk)
	if err != nil {
		return resp, err
	}
	p.redactedResponseLog(resp)
	return resp, nil
}

func (p *RedactedProvider) DefaultModel() string { return p.inner.DefaultModel() }
func (p *RedactedProvider) Name() string         { return p.inner.Name() }

var _ Provider = (*RedactedProvider)(nil)

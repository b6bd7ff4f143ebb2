package core

// The web layer stores the caller's address and agent on the request context.
// logOperation records the address on each operation log row.

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "oplog_ip"
	ctxKeyUserAgent contextKey = "oplog_ua"
)

// ContextWithIPAddress adds the caller's IP address for the operation log.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the caller's User-Agent for the operation log.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// IPAddressFromContext extracts the IP address, or "".
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// UserAgentFromContext extracts the User-Agent, or "".
func UserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

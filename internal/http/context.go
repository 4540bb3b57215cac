package http

import (
	"context"

	"github.com/example/roombooking/internal/application"
)

type contextKey string

const (
	principalContextKey   contextKey = "principal"
	roomIDContextKey      contextKey = "room_id"
	bookingIDContextKey   contextKey = "booking_id"
	memberEmailContextKey contextKey = "member_email"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithRoomID injects the room identifier resolved from the request path.
func ContextWithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomIDContextKey, roomID)
}

// RoomIDFromContext extracts a room identifier previously associated with the context.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomIDContextKey).(string)
	return id, ok
}

// ContextWithBookingID injects the booking identifier resolved from the request path.
func ContextWithBookingID(ctx context.Context, bookingID string) context.Context {
	return context.WithValue(ctx, bookingIDContextKey, bookingID)
}

// BookingIDFromContext extracts a booking identifier previously associated with the context.
func BookingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bookingIDContextKey).(string)
	return id, ok
}

// ContextWithMemberEmail injects the member email resolved from the request path.
func ContextWithMemberEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, memberEmailContextKey, email)
}

// MemberEmailFromContext extracts a member email previously associated with the context.
func MemberEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(memberEmailContextKey).(string)
	return email, ok
}

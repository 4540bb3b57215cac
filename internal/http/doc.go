// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and clears
//     the cookie.
//   - POST /users: registers an account (the only unauthenticated write).
//     GET /users lists registered accounts.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id}, DELETE /rooms/{id}:
//     room catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Mutations require owner or admin-member authority; deletion
//     is owner-only.
//   - POST /rooms/{id}/members, DELETE /rooms/{id}/members/{email}: role-tagged
//     membership management for owners and admin members.
//   - GET /rooms/{id}/slots?date=YYYY-MM-DD: the availability partition of the
//     room's operating window for one day.
//   - GET /bookings, POST /bookings, GET /bookings/{id}, PUT /bookings/{id},
//     DELETE /bookings/{id}: booking endpoints exchanging the `bookingDTO` payload
//     defined in booking_handler.go. Creation rejects intervals that overlap a
//     pending or confirmed booking in the same room and day with 409.
//   - POST /bookings/{id}/join: adds the caller to the attendee list.
//   - POST /bookings/{id}/cancel, /confirm, /complete: lifecycle transitions,
//     gated on the caller being the creator or a room manager.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

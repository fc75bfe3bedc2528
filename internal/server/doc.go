// Package server provides HTTP routing, middleware, and the OAuth redirect
// callback listener.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] catches the provider's redirect back to the registered
// redirect URI. It validates the state parameter (CSRF protection), captures
// the authorization code, and sends the result through a channel. The code
// exchange itself belongs to the token lifecycle coordinator, not the
// handler.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `spolist auth login`, a temporary HTTP server starts on
// the configured host/port, handles the redirect, and shuts down after the
// authorization code (or provider error) arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server

// Package middleware holds the HTTP middleware installed on the router.
package middleware

import "net/http"

// Middleware is a function that wraps an http.Handler. It has the same
// shape chi's Router.Use expects.
type Middleware = func(http.Handler) http.Handler

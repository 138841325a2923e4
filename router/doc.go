// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires handlers to routes using Go 1.22+ method patterns.

	mux := router.NewRouter(svc, hub)

Requests with a wrong method on a known path get 405 from the mux itself.
*/
package router

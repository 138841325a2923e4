// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

WithLogging logs each request with slog, including the request id set by
chi's RequestID middleware:

	mux.HandleFunc("GET /polls/list", middleware.WithLogging(handler))

CORS allows cross-origin requests and answers preflight OPTIONS requests:

	handler := middleware.CORS(mux)

# Helpers

	middleware.JSONResponse(w, http.StatusOK, models.OK())
	middleware.ErrorResponse(w, http.StatusConflict, "revision conflict")
	form, err := middleware.ParseFormBody(r)
	ip := middleware.GetClientIP(r)

ParseFormBody only accepts application/x-www-form-urlencoded bodies. It
decodes keys but returns values exactly as submitted; the polls service
decodes them once.
GetClientIP checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware

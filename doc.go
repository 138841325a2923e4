// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickpoll API server.

Quickpoll stores two-option polls in a revisioned document store and lets
clients list, create, vote on and delete them. Concurrent writers are
arbitrated by revision tokens: a write carrying a stale revision is
rejected with 409 Conflict rather than merged.

# Starting the Server

With the default SQLite backend:

	DATABASE_URL=file:polls.db go run .

Or with flags:

	go run . -p 8090 -t postgres -d "postgres://..."
	go run . -t mongo -d mongodb://localhost:27017 -db-name polls
	go run . -t redis -d localhost:6379
	go run . -t memory

# Configuration

Settings come from flags, then the environment, then a .env file:

  - PORT (-p): Server port (default: 8090)
  - DATABASE_TYPE (-t): memory, sqlite, postgres, mongo or redis (default: sqlite)
  - DATABASE_URL (-d): DSN, mongodb:// URI or redis address (not needed for memory)
  - DATABASE_NAME (-db-name): Mongo database (default: polls)
  - STORE_TIMEOUT (-timeout): Deadline for a single store call (default: 5s)
  - RABBITMQ_URL (-amqp): Publish poll events to RabbitMQ when set
  - RABBITMQ_QUEUE (-queue): Queue for poll events (default: poll-events)

# Architecture

  - polls: List, Create, Vote and Delete, with typed errors
  - store: Revisioned poll storage over memory, SQL, MongoDB and Redis
  - events: Event publishing to the live websocket feed and RabbitMQ
  - handlers: HTTP handlers for the poll API and live feed
  - router: Route definitions using Go 1.22+ routing
  - pages: Static text pages
  - middleware: CORS, logging, JSON and form helpers
  - models: Poll and response types
  - db: Schema and collection setup
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

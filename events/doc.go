// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events publishes poll changes after they are stored.

A Hub pushes events to websocket clients; an AMQPPublisher sends them to a
RabbitMQ queue. Fanout combines several publishers. Publishing never fails
the operation that caused the event.
*/
package events

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p         Server port
	-t         Store type (memory, sqlite, postgres, mongo, redis)
	-d         Database URL
	-db-name   Mongo database name
	-timeout   Per-call store timeout
	-amqp      RabbitMQ URL
	-queue     RabbitMQ queue
	-env-file  Dotenv file (default .env, empty to skip)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_TYPE  → -t
	DATABASE_URL   → -d
	DATABASE_NAME  → -db-name
	STORE_TIMEOUT  → -timeout
	RABBITMQ_URL   → -amqp
	RABBITMQ_QUEUE → -queue

CLI flags take precedence over environment variables, and the environment
takes precedence over the dotenv file. A missing dotenv file is ignored.

# Validation

ParseFlags returns an error for an unknown store type, a missing
DATABASE_URL on any store but memory, and malformed PORT or STORE_TIMEOUT
values.
*/
package cliparse

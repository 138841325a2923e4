// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickpoll API.

# Handler Types

  - PollHandler: list, create, vote and delete
  - LiveHandler: websocket feed of poll events

Handlers wrap a *polls.Service:

	pollHandler := handlers.NewPollHandler(svc)

# Poll API

	GET    /polls/list              → ListPolls
	POST   /polls/create            → CreatePoll (form: title, option1, option2)
	POST   /polls/vote/{pollid}     → Vote (query: option=1|2)
	DELETE /polls/delete/{pollid}   → DeletePoll

Every response is a result envelope:

	{"result":{"status":"ok","id":"..."}}
	{"result":{"status":"error","message":"..."}}

Service errors map to status codes: validation 400, missing poll 404,
revision conflict 409, anything else 500. ListPolls is the exception and
reports store failures with 200 and an error envelope.

# Live Feed

	GET /polls/live → Subscribe

The first message is the current poll list. Every later message is one
poll event as published by the service.
*/
package handlers

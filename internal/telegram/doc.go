// Package telegram adapts the Telegram Bot API webhook flow to the
// platform-agnostic model in pkg/message.
//
// An HTTP request becomes an immutable Request, which Classify tags with an
// Event. The Translator turns the event into a message.IncomingMessage,
// resolving media through getFile. In the other direction the Compiler turns
// a message.Reply into an Envelope (endpoint + params) and the Client
// delivers it with retry, backoff and token-scrubbed diagnostics. The Driver
// composes these pieces; the WebhookReceiver plugs the driver into the
// gateway.
package telegram

// Package reply implements the reply-generation adapter: it turns user
// text into a short conversational reply via the OpenAI chat API under a
// fixed persona directive. Like the other engine adapters, its only
// failure mode is an empty reply.
package reply

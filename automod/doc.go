// Auto-moderation rules engine for chat messages.
//
// Every chat message is run through an ordered list of rules. A rule can ignore the
// message, hand out offense points, ask for the message to be deleted, or ask for the
// author to be timed out. Points decay over time; a user who accumulates enough of them
// gets a timeout. Repeat offenders receive escalating timeout durations, based on the
// moderation log.
//
// Rule implementations live in `automod/rules`, and the daemon wiring everything to
// Twitch chat is `cmd/modbot`.
package automod

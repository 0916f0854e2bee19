// Automod component for caching arbitrary data (as JSON strings) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// Used to cache chat user records, so that every chat message does not turn into a
// database write.
package cachestore

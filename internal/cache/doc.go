// Package cache stores fetched list pages on disk with a TTL.
//
// Pages are written as JSON files under ~/.carelist/cache/ keyed by a SHA256
// of the request (source, workspace, sort, offset, limit). Expired entries are
// ignored on read and removed by CleanupExpired. Settings come from the config
// file and may be overridden with CARELIST_CACHE_* environment variables.
package cache

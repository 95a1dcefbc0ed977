// Package redis implements store.SessionStore on Redis sets with a sliding TTL.
package redis

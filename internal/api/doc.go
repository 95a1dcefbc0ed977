// Package api exposes the study service over HTTP. It owns routing, bearer
// authentication, request validation and the mapping of service errors to
// status codes and safe messages.
package api

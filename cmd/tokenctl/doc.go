// Command tokenctl manages the admin token for a VidPress instance.
//
// The admin token gates mutating API endpoints (job submission, cache
// clearing, cancellation). When no token is configured the API is open,
// which suits single-user deployments behind a firewall.
//
// Usage:
//
//	tokenctl set     Set or replace the admin token (prompted, no echo)
//	tokenctl status  Report whether a token is configured
//	tokenctl clear   Remove the token, reopening the API
//
// The database location is taken from DATABASE_DIR (default /database),
// matching the server's configuration.
package main

// Package shop reads installed shop settings (time zone, API token) from the
// shops table. The table is owned by the back-office application; this service
// never writes to it.
package shop

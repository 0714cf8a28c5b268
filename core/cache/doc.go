// Package cache connects the optional Redis instance shared by workers for
// location name lookups.
package cache

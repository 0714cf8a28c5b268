// Package platform is a small client for the e-commerce platform's Admin GraphQL API.
//
// It covers the three lookups ingestion needs: location display names, order line
// items (to resolve refund lines to inventory items) and the live available quantity
// at a location. Every call is bounded by the configured timeout and authenticated
// with the shop's access token.
package platform

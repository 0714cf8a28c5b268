// Package middleware contains HTTP middleware for the Fiber application.
//
//   - rayid: tags every request with a ray id (X-Ray-ID) for log correlation.
//   - auth: static API key check on the first-party and ledger routes. Webhook,
//     health and swagger routes are public.
package middleware

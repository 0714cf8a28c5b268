// Package messaging connects the service to Google Cloud Pub/Sub, the alternative
// delivery path for platform webhooks. The subscriber itself lives with the webhook
// feature; this package only builds the client and the subscription.
package messaging

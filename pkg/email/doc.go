// Package email defines the outbound mail boundary and two implementations:
// a Postmark-backed sender for production and a development sender that
// writes messages to disk instead of delivering them.
//
// The platform sends account emails only (confirmation links, password
// resets, email-change approvals). Delivery guarantees and retries are the
// provider's concern; callers treat a send error as "try the flow again".
package email

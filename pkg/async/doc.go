// Package async provides a typed Future for running work off the request
// path. The platform uses it to send account emails without blocking the
// registration or reset flow on the mail provider.
package async

// Package auth implements the account lifecycle: registration, password
// login, email confirmation, password reset, and email change.
//
// The service owns no transport. A host application wires it to whatever
// routing and session layer it uses, passes the signed action tokens through
// links in outgoing email, and hands the returned bearer token to its own
// middleware. Storage is abstracted behind UserDirectory; a Postgres
// implementation on pgxpool is included.
//
// Email-bound flows (confirm, reset, change email) ride on pkg/token. Reset
// tokens are issued to an email address whose owner is not logged in, so
// verification binds the subject from the token payload instead of the
// session. Confirmation and email-change tokens are consumed by a logged-in
// user and must match that user's id.
package auth

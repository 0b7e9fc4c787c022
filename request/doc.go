// Package request is the pre-configured client for the admin backend API.
//
// Every call goes through two hooks. Before sending, the current session token (if
// any) is copied into the Authorization header. After receiving, the response is
// interpreted:
//
//   - a binary body (file export) is handed back untouched as Result.Binary
//   - a {code, msg, data} envelope with code "00000" is handed back as Result.Envelope
//   - any other code is a business error: the user is notified and the call fails
//   - a failed call whose body carries code "A0230" means the session expired: the
//     user is asked to sign in again, local session data is cleared and the app is
//     sent back to "/"
//
// Failures are returned as *Error, which keeps the backend code and message along
// with the transport error it came from.
package request

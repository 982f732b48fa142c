// Package errors provides coded errors for jobtx.
//
// Every failure the runner surfaces carries an ErrorCode so callers and
// tests can branch on the category without matching message text. The
// NOTHING_TO_DO code is a termination signal rather than a failure; use
// IsCleanExit to tell the two apart.
package errors

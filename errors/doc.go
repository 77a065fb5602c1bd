// Package errors provides a small error classification system shared by every
// bridge component: Transient (retryable), Invalid (bad input, do not retry),
// and Fatal (unrecoverable, stop the process).
//
// Components wrap errors with component/method/action context instead of
// inventing ad-hoc messages:
//
//	return errors.WrapTransient(err, "EngineCommandClient", "Send", "dial engine")
//
// Classification survives wrapping and unwrapping, so callers can branch on
// errors.IsTransient / errors.IsFatal / errors.IsInvalid without string
// matching.
package errors

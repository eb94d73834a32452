// Package types holds the wire envelopes every storefront API response uses.
package types

// SuccessEnvelope wraps every 2xx payload under a single data key, so cart
// snapshots, product pages, and checkout receipts all decode the same way.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Code is one of the stable taxonomy
// codes (VALIDATION_ERROR, OUT_OF_STOCK, CONFLICT, ...); Details carries
// structured context such as per-field validation messages or the per-line
// issues from checkout revalidation.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError under an error key, mirroring SuccessEnvelope.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

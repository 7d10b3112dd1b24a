// Package sanitizer normalizes free text submitted for workshops and
// comments before it is validated and stored.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input degrades to an empty string rather than an error, so the
// validator reports it as a missing field.
package sanitizer

// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and never fail: invalid input comes back
// as an empty string (or unchanged) and is rejected later by validation.
//
//   - Free text (brands, models, locations): collapse whitespace, trim.
//   - E-mail addresses: trim and lowercase.
//   - Card numbers: keep digits only; MaskCardNumber keeps the last four.
//   - Card expiry: strip whitespace so " 08 / 27 " becomes "08/27".
package sanitizer

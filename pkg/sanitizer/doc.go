// Package sanitizer normalizes free-form customer input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be normalized
// is returned trimmed rather than rejected, leaving rejection to the validators.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]) when the number parses for the configured region
//   - Names: collapse whitespace, trim leading/trailing spaces
package sanitizer

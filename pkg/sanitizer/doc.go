// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty so the validator rejects it.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]), Brazilian numbers may omit +55
//   - Names and free text: trimmed, inner whitespace collapsed
//   - Documents (CPF/CNPJ): digits only
package sanitizer

// Package versioncmp orders the version strings reported by installed
// components.
//
// Two schemes are provided:
//
//   - Loose: split into digit and non-digit runs ("0.4.7dev9008" is
//     [0 4 7 dev 9008]), compare digit runs numerically and other runs as
//     case-sensitive strings, put a non-digit run before a digit run, and
//     treat a shorter sequence as less when every shared run is equal
//     ("1.2" < "1.2.1"). Loose never fails.
//   - Semver: semantic versions via Masterminds semver, coercing "1.2" to
//     "1.2.0". Strings that are not semantic versions are rejected.
//
// Loose is the default everywhere in checkenv.
package versioncmp

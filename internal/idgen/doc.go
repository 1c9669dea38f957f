// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Result entries whose measurement rows declare no datasetId are keyed with
// identifiers from this package; callers should treat them as opaque strings.
package idgen

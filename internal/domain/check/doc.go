// Package check defines the data model for environment-readiness verification:
// immutable check specifications, per-check results, and the aggregate report.
package check

// Package internaldefs holds the shared metric name and bucket definitions
// used by the otel and prometheus exporters. It is not a stable API.
package internaldefs

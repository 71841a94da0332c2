// Package metered provides a storage.IStorage decorator that records
// per operation metrics with VictoriaMetrics/metrics:
//
//	pocket_storage_ops_total{op="put"}              number of calls
//	pocket_storage_errors_total{op="put"}           number of failed calls
//	pocket_storage_op_duration_seconds{op="put"}    latency histogram
//
// The op label is one of put, get, delete, delete_all, contains, list_keys.
// Metrics are kept in a metrics.Set, so several pockets can be metered
// independently (or share one set by passing the same one). WritePrometheus
// exposes the set in the Prometheus text format.
package metered

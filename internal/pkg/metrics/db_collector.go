package metrics

import "database/sql"

// RecordStorePoolMetrics updates local store connection pool metrics.
func RecordStorePoolMetrics(stats sql.DBStats) {
	StorePoolConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	StorePoolConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	StorePoolConnections.WithLabelValues("max").Set(float64(stats.MaxOpenConnections))
	StoreWaitCount.Set(float64(stats.WaitCount))
}

// Package metrics exposes the Prometheus registry on its own listener.
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterDBStats publishes connection pool statistics for db under dbName
// (go_sql_* series labelled db_name).
func RegisterDBStats(reg prometheus.Registerer, dbName string, db *sql.DB) error {
	return reg.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler serves the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

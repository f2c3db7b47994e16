// Package platform provides a thin REST client for the Databricks workspace:
// SQL statement execution against a warehouse and the Jobs API.
package platform

import (
	"github.com/jobmon-io/jobmon/internal/config"
)

// Config holds the workspace connection settings read once at startup.
//
// Host and WarehouseID may legitimately be empty: the monitoring endpoints
// treat missing configuration as a degraded-availability condition, not a
// startup failure.
type Config struct {
	// Host is the workspace URL, e.g. "https://adb-123.azuredatabricks.net".
	Host string
	// Token is the optional static service-principal token. When the service
	// runs as a Databricks App the platform injects credentials and this
	// stays empty.
	Token string
	// WarehouseID identifies the SQL warehouse used for system table queries.
	WarehouseID string
}

// LoadConfig loads workspace configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Host:        config.GetEnvStr("DATABRICKS_HOST", ""),
		Token:       config.GetEnvStr("DATABRICKS_TOKEN", ""),
		WarehouseID: config.GetEnvStr("JOBMON_WAREHOUSE_ID", ""),
	}
}

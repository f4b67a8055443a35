// Package config handles loading and validating link status service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Credentials (MQTT password, InfluxDB token) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Environment Variables:
//   - API_DEVICES_URL: upstream device-status feed URL
//   - LINKSTATUS_CONFIG: config file path (read by cmd/linkstatus)
//   - LINKSTATUS_API_HOST, LINKSTATUS_DATABASE_PATH
//   - LINKSTATUS_MQTT_HOST, LINKSTATUS_MQTT_USERNAME, LINKSTATUS_MQTT_PASSWORD
//   - LINKSTATUS_INFLUXDB_TOKEN
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Upstream.URL)
package config

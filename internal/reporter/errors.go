package reporter

import "errors"

var errInfluxDisconnected = errors.New("influxdb not connected")

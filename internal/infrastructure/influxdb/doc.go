// Package influxdb writes report history to InfluxDB v2.
//
// Connect pings the server and opens a batching write API on the official
// influxdb-client-go v2 library. Each WriteReport call becomes one flushed
// batch:
//
//	report_summary,site=<site>                online=12i,offline=3i,devices=15i
//	device_status,id=5,site=<site>,source=ds  online=true,value=0i,modems=1i,modems_online=1i
//
// Asynchronous write failures are delivered to the SetOnError callback.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteReport(report, time.Now())
package influxdb

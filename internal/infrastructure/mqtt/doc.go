// Package mqtt publishes report snapshots to an MQTT broker.
//
// The client is publish-only. It connects with auto-reconnect, announces the
// service on a retained status topic and registers a Last Will so that
// subscribers can tell a crash from a clean shutdown.
//
// # Topics
//
// All topics share a configurable prefix (default "linkstatus"):
//
//	linkstatus/system/status              service online/offline (retained, LWT)
//	linkstatus/report/devices             full report body (retained)
//	linkstatus/report/summary             counts and id lists (retained)
//	linkstatus/device/{source}/{id}/state one parent device with its modems (retained)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(client.Topics().Summary(), summary)
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside local development
//   - Supply credentials through LINKSTATUS_MQTT_USERNAME / LINKSTATUS_MQTT_PASSWORD
package mqtt

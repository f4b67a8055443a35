package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "linkstatus"

// Topics builds the topic names published by the service.
//
//	topics := mqtt.NewTopics("linkstatus")
//	topics.DeviceState("ds", 5) // "linkstatus/device/ds/5/state"
type Topics struct {
	prefix string
}

// NewTopics returns a builder rooted at prefix. Surrounding slashes are
// trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root segment shared by every topic.
func (t Topics) Prefix() string {
	return t.prefix
}

// Status is the retained service status topic, also used for the Last Will.
//
// Example: linkstatus/system/status
func (t Topics) Status() string {
	return t.prefix + "/system/status"
}

// Report carries the full report body.
//
// Example: linkstatus/report/devices
func (t Topics) Report() string {
	return t.prefix + "/report/devices"
}

// Summary carries counts and id lists only.
//
// Example: linkstatus/report/summary
func (t Topics) Summary() string {
	return t.prefix + "/report/summary"
}

// DeviceState carries one parent device with its modems.
//
// Example: linkstatus/device/geo/20/state
func (t Topics) DeviceState(source string, id int) string {
	return fmt.Sprintf("%s/device/%s/%d/state", t.prefix, source, id)
}

package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "wildtrace"

// Topics builds WildTrace MQTT topics under a common prefix.
//
//	topics := mqtt.Topics{Prefix: "wildtrace"}
//	topics.Change("device", "created")
//	// Returns: "wildtrace/changes/device/created"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: wildtrace/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// Change returns the topic for one kind of change to one entity type.
//
// Example: wildtrace/changes/event/deleted
func (t Topics) Change(entity, action string) string {
	return t.prefix() + "/changes/" + entity + "/" + action
}

// AllChanges returns a wildcard matching every change topic.
//
// Example: wildtrace/changes/#
func (t Topics) AllChanges() string {
	return t.prefix() + "/changes/#"
}

// Package mqtt publishes WildTrace change notifications to an MQTT broker.
//
// When a device, event, project, observation or submission is created,
// updated or deleted through the API, a small JSON message is published
// so that downstream consumers (dashboards, thumbnailers, exporters) can
// react without polling:
//
//	wildtrace/changes/{entity}/{action}
//
// Publishing is best effort. A failed publish is logged by the notifier
// and never fails the HTTP request that caused it.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	notifier := mqtt.NewChangeNotifier(client, cfg.MQTT.TopicPrefix, logger)
//	notifier.Notify(ctx, mqtt.Change{Entity: "device", Action: "created", ID: "42"})
//
// The client publishes a retained online status to {prefix}/system/status
// on connect and registers an offline Last Will on the same topic.
package mqtt

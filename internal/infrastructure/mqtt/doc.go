// Package mqtt provides MQTT connectivity for graphios.
//
// It wraps the Eclipse Paho MQTT client and is used by the mqtt backend to
// publish points as InfluxDB line protocol.
//
// # Topics
//
//	graphios/<project>/<measurement>   one message per point
//	graphios/status                    retained online/offline status and LWT
//
// The prefix is configurable. Project and measurement are sanitised so that
// '/', '+' and '#' never create extra levels or wildcards.
//
// # Usage
//
//	client, err := mqtt.Connect(mqtt.Config{
//	    Host:        "127.0.0.1",
//	    Port:        1883,
//	    ClientID:    "graphios",
//	    QoS:         1,
//	    StatusTopic: mqtt.Topics{Prefix: "graphios"}.Status(),
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(ctx, "graphios/infra/check_disk", payload, 1, false)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Reconnection
//
// The first connection must succeed. Afterwards paho reconnects on its own
// and the logger records lost and restored connections. Publishes made
// while disconnected fail with ErrNotConnected.
package mqtt

// Package mqtt implements a backend that publishes points to an MQTT broker.
//
// Each record becomes one message in InfluxDB line protocol (second
// precision), built exactly like the points the influxdb backend writes:
//
//	topic:   <mqtt_topic_prefix>/<project>/<measurement>
//	payload: check_disk,host=web1,project=infra,status=0 used=42.5 1700000000
//
// The broker connection is opened on the first Send and reopened when it has
// been lost. Online/offline status is kept retained on <prefix>/status.
//
// # Options
//
//	mqtt_broker        host[:port], default 127.0.0.1:1883 (8883 with SSL)
//	mqtt_use_ssl       default false
//	mqtt_user          optional
//	mqtt_password      optional
//	mqtt_client_id     default "graphios"
//	mqtt_topic_prefix  default "graphios"
//	mqtt_qos           0, 1 or 2, default 1
//	mqtt_extra_tags    tags added to every point
package mqtt

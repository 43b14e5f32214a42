package mqtt

import "errors"

// Publish and connect failures. Check them with errors.Is.
var (
	ErrNotConnected     = errors.New("mqtt: not connected to broker")
	ErrConnectionFailed = errors.New("mqtt: cannot connect to broker")
	ErrPublishFailed    = errors.New("mqtt: publish not acknowledged")
	ErrInvalidQoS       = errors.New("mqtt: qos must be 0, 1 or 2")
	ErrInvalidTopic     = errors.New("mqtt: empty topic")
	ErrPayloadTooLarge  = errors.New("mqtt: payload too large")
)

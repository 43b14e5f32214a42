package mqtt

import "strings"

// DefaultTopicPrefix is the root of every graphios topic.
const DefaultTopicPrefix = "graphios"

// Topics builds graphios topic names under Prefix.
//
//	topics := mqtt.Topics{Prefix: "graphios"}
//	topics.Point("infra", "check_disk") // graphios/infra/check_disk
//	topics.Status()                     // graphios/status
type Topics struct {
	Prefix string
}

// Point returns the topic for points of one project and measurement.
func (t Topics) Point(project, measurement string) string {
	return t.prefix() + "/" + Level(project) + "/" + Level(measurement)
}

// Status returns the retained status topic.
func (t Topics) Status() string {
	return t.prefix() + "/status"
}

// AllPoints returns a wildcard matching every point topic.
func (t Topics) AllPoints() string {
	return t.prefix() + "/+/+"
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// levelReplacer strips characters with a meaning in MQTT topic names.
var levelReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// Level makes s safe to use as a single topic level.
// Empty strings become "_" so the level count stays fixed.
func Level(s string) string {
	s = levelReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return s
}

// Package config loads graphios.yaml.
//
// The file names the enabled backends, where records are read from and how
// to log. Backend options live in one flat mapping under "options" using the
// keys of the classic graphios.cfg (influxdb_servers, influxdb_user, ...);
// each backend parses and validates its own keys when it is built.
//
// Credentials can be supplied through GRAPHIOS_INFLUXDB_USER,
// GRAPHIOS_INFLUXDB_PASSWORD, GRAPHIOS_MQTT_USER and GRAPHIOS_MQTT_PASSWORD
// instead of the file. Keep the file itself at mode 0600 when it does
// hold passwords.
//
//	cfg, err := config.Load("configs/graphios.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, name := range cfg.Backends { ... }
package config

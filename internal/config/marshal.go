package config

// document mirrors Config with durations rendered the way the loader reads them.
type document struct {
	Display string `yaml:"display,omitempty"`
	Cache   struct {
		Capacity      int    `yaml:"capacity"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	IPC     struct {
		SocketPath string `yaml:"socket_path,omitempty"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"ipc"`
}

// MarshalYAML renders c so that the output can be loaded back unchanged.
func (c Config) MarshalYAML() (any, error) {
	var doc document
	doc.Display = c.Display
	doc.Cache.Capacity = c.Cache.Capacity
	doc.Cache.SweepInterval = c.Cache.SweepInterval.String()
	doc.Logging = c.Logging
	doc.IPC.SocketPath = c.IPC.SocketPath
	doc.IPC.Timeout = c.IPC.Timeout.String()
	return doc, nil
}

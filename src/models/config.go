package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	TLS      MTLSConfig     `yaml:"tls"`
	Framing  MFramingConfig `yaml:"framing"`
	Monitor  MMonitorConfig `yaml:"monitor"`
	Storage  MStorageConfig `yaml:"storage"`
}

type MTLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	// RequireClientCert is reserved for a later iteration. The transport
	// honours it when set, so enabling mutual TLS needs no interface change.
	RequireClientCert bool `yaml:"require_client_cert"`
}

type MFramingConfig struct {
	// MaxFrameBytes caps the payload length a peer may advertise.
	// 0 means the built-in default (16 MiB).
	MaxFrameBytes uint32 `yaml:"max_frame_bytes"`
}

type MMonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

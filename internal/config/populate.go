package config

// PopulateConfig configures the filesystem populator.
type PopulateConfig struct {
	// OutputBasePath is the root under which each decoy filesystem is written.
	OutputBasePath string `yaml:"output_base_path"`

	// ProfileDir overrides the embedded built-in profiles when set.
	ProfileDir string `yaml:"profile_dir"`

	// WatchProfiles enables hot-reload of ProfileDir definitions.
	WatchProfiles bool `yaml:"watch_profiles"`

	// MaxConcurrent bounds in-flight generation requests within one job.
	MaxConcurrent int `yaml:"max_concurrent"`

	// TimestampWindow bounds synthetic file modification times.
	TimestampWindow TimestampWindow `yaml:"timestamp_window"`

	// Permissions maps content type to permission bits.
	Permissions PermissionTable `yaml:"permissions"`
}

// TimestampWindow is the bounded past window synthetic mtimes are drawn from.
type TimestampWindow struct {
	MinAge Duration `yaml:"min_age"` // youngest allowed age (e.g. 1 day)
	MaxAge Duration `yaml:"max_age"` // oldest allowed age (e.g. 180 days)
}

// PermissionTable maps a file class to Unix permission bits.
// Keys match populate profile entry classes.
type PermissionTable map[string]uint32

// DefaultPermissions returns the permission-by-type table.
// Private keys and shell history are owner-only; scripts are executable.
func DefaultPermissions() PermissionTable {
	return PermissionTable{
		"private-key":   0o600,
		"shell-history": 0o600,
		"env":           0o600,
		"credentials":   0o600,
		"config":        0o644,
		"source":        0o644,
		"document":      0o644,
		"script":        0o755,
		"log":           0o640,
	}
}

// Mode returns the permission bits for a file class, falling back to 0644.
func (t PermissionTable) Mode(class string) uint32 {
	if m, ok := t[class]; ok {
		return m
	}
	return 0o644
}

package dto

type PluginInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Enabled      bool   `json:"enabled"`
	Binary       string `json:"binary"`
	PollInterval string `json:"poll_interval"`
}

type DoctorResult struct {
	Name            string `json:"name"`
	ChecksumValid   bool   `json:"checksum_valid"`
	BinaryReachable bool   `json:"binary_reachable"`
	LifecycleOK     bool   `json:"lifecycle_ok"`
	Error           string `json:"error,omitempty"`
}

package config

// Configer reads configuration keys. Keys are the upper case names used in
// the environment without the IPFSDAV_ prefix, for example IPFS_API.
type Configer interface {
	LoadFromPath(path string) error
	Load() error
	GetKey(key string) string
	MustGetKey(key string) string
	GetKeyWithDefault(key, defaultValue string) string
	GetIntKey(key string) int
	MustGetIntKey(key string) int
	GetIntKeyWithDefault(key string, defaultValue int) int
	GetBoolKeyWithDefault(key string, defaultValue bool) bool
}

// EnvPrefix is prepended to every key when it is looked up in the
// environment.
const EnvPrefix = "IPFSDAV_"

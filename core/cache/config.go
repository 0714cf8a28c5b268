package cache

// Config holds configuration for the optional shared Redis cache.
type Config struct {
	// Addr is host:port of the Redis server. Empty disables the shared cache.
	Addr string `mapstructure:"addr" default:""`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database number.
	DB int `mapstructure:"db" default:"0"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size" default:"20"`
}

package redis

const (
	keyPrefix = "zine/"

	// KeyPrefixSearch is the key prefix for cached content store lookups
	KeyPrefixSearch = keyPrefix + "search/"
)

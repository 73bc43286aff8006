package constants

// Response envelope statuses
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Cache key prefixes for the Redis-backed location cache.
const (
	CacheKeyPrefix    = "pronto:"
	CacheKeyCountries = CacheKeyPrefix + "location:countries"
	CacheKeyStates    = CacheKeyPrefix + "location:states:"
	CacheKeyCities    = CacheKeyPrefix + "location:cities:"
)

// Verification code alphabet: uppercase letters and digits.
const CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

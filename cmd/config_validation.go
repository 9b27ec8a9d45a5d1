package cmd

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/zine-site/internal/web/search/dao"
)

var regexpCacheTable = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateSearchConfig(get, &validationErrs)
	validateContentDBConfig(get, &validationErrs)
	validateRedisConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateSearchConfig validates the content store driver and the result cache.
func validateSearchConfig(get configGetter, errs *[]string) {
	if raw := get("settings.search.store"); raw != nil {
		driver, parseErr := parseStrictString(raw)
		switch normalized := strings.ToLower(strings.TrimSpace(driver)); {
		case parseErr != nil:
			appendValidationError(errs, "settings.search.store must be a string")
		case normalized != dao.StoreDriverMongo && normalized != dao.StoreDriverPostgres:
			appendValidationError(errs, "settings.search.store must be one of [%s, %s]",
				dao.StoreDriverMongo, dao.StoreDriverPostgres)
		}
	}

	validateOptionalBool(get, "settings.search.cache.enabled", errs)
	validateOptionalIntMin(get, "settings.search.cache.ttl_sec", 1, errs)
	if raw := get("settings.search.cache.table"); raw != nil {
		table, parseErr := parseStrictString(raw)
		if parseErr != nil || !regexpCacheTable.MatchString(table) {
			appendValidationError(errs, "settings.search.cache.table must be 1-64 letters, digits or underscores")
		}
	}

	backend := dao.CacheBackendRedis
	if raw := get("settings.search.cache.backend"); raw != nil {
		value, parseErr := parseStrictString(raw)
		backend = strings.ToLower(strings.TrimSpace(value))
		if parseErr != nil || (backend != dao.CacheBackendRedis && backend != dao.CacheBackendPostgres) {
			appendValidationError(errs, "settings.search.cache.backend must be one of [%s, %s]",
				dao.CacheBackendRedis, dao.CacheBackendPostgres)
			return
		}
	}

	if raw := get("settings.search.cache.enabled"); raw != nil {
		if enabled, ok := parseStrictBool(raw); ok && enabled {
			if backend == dao.CacheBackendRedis {
				validateRequiredHost(get, "settings.db.redis.addr", errs)
			} else {
				validateRequiredHost(get, "settings.db.postgres.addr", errs)
			}
		}
	}
}

// validateContentDBConfig validates the connection settings of the selected driver.
func validateContentDBConfig(get configGetter, errs *[]string) {
	prefix := "settings.db.content"
	if raw := get("settings.search.store"); raw != nil {
		if driver, err := parseStrictString(raw); err == nil &&
			strings.ToLower(strings.TrimSpace(driver)) == dao.StoreDriverPostgres {
			prefix = "settings.db.postgres"
		}
	}

	validateRequiredHost(get, prefix+".addr", errs)
	validateOptionalStringNonEmpty(get, prefix+".db", errs)
}

// validateRedisConfig validates redis-related startup configuration values.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)
}

// validateWebConfig validates the CORS origin suffix list and the search throttle.
func validateWebConfig(get configGetter, errs *[]string) {
	for _, key := range []string{
		"settings.web.throttle.total_per_sec",
		"settings.web.throttle.total_burst",
		"settings.web.throttle.each_per_sec",
		"settings.web.throttle.each_burst",
	} {
		validateOptionalIntMin(get, key, 1, errs)
	}

	raw := get("settings.web.allowed_origin_suffixes")
	if raw == nil {
		return
	}

	var suffixes []string
	switch v := raw.(type) {
	case []string:
		suffixes = v
	case []any:
		for _, item := range v {
			s, err := parseStrictString(item)
			if err != nil {
				appendValidationError(errs, "settings.web.allowed_origin_suffixes must be a list of hosts")
				return
			}
			suffixes = append(suffixes, s)
		}
	default:
		appendValidationError(errs, "settings.web.allowed_origin_suffixes must be a list of hosts")
		return
	}

	for _, s := range suffixes {
		if !isValidHost(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
			appendValidationError(errs, "settings.web.allowed_origin_suffixes has invalid host %q", s)
		}
	}
}

// validateRequiredHost checks that key holds a host[:port] string.
func validateRequiredHost(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		appendValidationError(errs, "%s is required", key)
		return
	}

	host, parseErr := parseStrictString(raw)
	if parseErr != nil || !isValidHost(host) {
		appendValidationError(errs, "%s must be a valid host", key)
	}
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}

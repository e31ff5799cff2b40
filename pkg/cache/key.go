package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "neis"

// CacheKey identifies one cached page body.
type CacheKey struct {
	// Service is the hub endpoint (e.g., "mealServiceDietInfo")
	Service string

	// Params are the entity filters (e.g., {"SD_SCHUL_CODE": "7010536"})
	Params map[string]string

	// PageIndex and PageSize are the pIndex/pSize of the request
	PageIndex int
	PageSize  int
}

// String generates a deterministic cache key string.
// Format: neis:service:param1=val1:param2=val2:p=index:s=size
//
// Example:
//
//	neis:mealServiceDietInfo:ATPT_OFCDC_SC_CODE=B10:SD_SCHUL_CODE=7010536:p=1:s=1000
//
// The API key is never part of the key.
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if service := strings.Trim(k.Service, "/"); service != "" {
		parts = append(parts, service)
	}

	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params[key]))
		}
	}

	if k.PageIndex > 0 {
		parts = append(parts, fmt.Sprintf("p=%d", k.PageIndex))
	}
	if k.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("s=%d", k.PageSize))
	}

	return strings.Join(parts, ":")
}

package config

import "time"

type Cache struct{}

var _ CacheConfig = Cache{}

func (Cache) GetProfileTTL() Duration {
	return GetDurationEnv("CACHE_PROFILE_TTL", 5*time.Minute)
}

func (Cache) GetUnitsTTL() Duration {
	return GetDurationEnv("CACHE_UNITS_TTL", 30*time.Minute)
}

func (Cache) GetDictionaryTTL() Duration {
	return GetDurationEnv("CACHE_DICTIONARY_TTL", time.Hour)
}

func (Cache) GetEntriesTTL() Duration {
	return GetDurationEnv("CACHE_ENTRIES_TTL", 2*time.Minute)
}

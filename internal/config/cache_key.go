package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active JWT ID of a user.
func (r *CacheKeyStruct) UserSessionKey(userID int64) string {
	return fmt.Sprintf("login:%d", userID)
}

// CatalogTripleKey returns the cache key for a resolved exam/subject/topic triple.
func (r *CacheKeyStruct) CatalogTripleKey(examCode, subjectCode, topicCode string) string {
	return fmt.Sprintf("catalog:triple:%s:%s:%s", examCode, subjectCode, topicCode)
}

// CatalogExamsKey returns the cache key for the public exam listing.
func (r *CacheKeyStruct) CatalogExamsKey() string {
	return "catalog:exams"
}

var CacheKey = NewCacheKeyStruct()

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key tracking a user's active session JTI.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ExamResultsChannel returns the Pub/Sub channel carrying live submission
// results of an exam.
func (r *CacheKeyStruct) ExamResultsChannel(examID string) string {
	return fmt.Sprintf("exam:%s:results", examID)
}

var CacheKey = NewCacheKeyStruct()

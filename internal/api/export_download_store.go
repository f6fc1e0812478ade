package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type exportDownload struct {
	filePath  string
	fileName  string
	runID     string
	expiresAt time.Time
}

// exportDownloadStore 结果文件的一次性下载令牌
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(filePath, fileName, runID string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = exportDownload{
		filePath:  filePath,
		fileName:  fileName,
		runID:     runID,
		expiresAt: now.Add(ttl),
	}
	return token
}

func (s *exportDownloadStore) get(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	return v, ok
}

func (s *exportDownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// purgeExpiredLocked 清理过期令牌；调用方持有锁
func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) []exportDownload {
	var expired []exportDownload
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			expired = append(expired, v)
			delete(s.items, k)
		}
	}
	return expired
}

// sweep 清理过期令牌，返回其文件路径以便删除
func (s *exportDownloadStore) sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	for _, v := range s.purgeExpiredLocked(s.now()) {
		paths = append(paths, v.filePath)
	}
	return paths
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// drain 清空全部令牌，返回其文件路径
func (s *exportDownloadStore) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.items))
	for k, v := range s.items {
		paths = append(paths, v.filePath)
		delete(s.items, k)
	}
	return paths
}

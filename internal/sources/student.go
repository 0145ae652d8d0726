// internal/sources/student.go
package sources

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scholarship-engine/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	studentCachePrefix     = "student:profile:"
	DefaultStudentCacheTTL = 10 * time.Minute
)

var (
	ErrStudentNotFound     = errors.New("student profile not found")
	ErrScholarshipNotFound = errors.New("scholarship not found")
)

// StudentSource loads student profiles by id.
type StudentSource interface {
	GetStudent(ctx context.Context, studentID string) (*models.StudentProfile, error)
}

// PostgresStudentSource reads profiles from the student_profiles table and keeps a
// read-through copy in Redis. The cache is optional.
type PostgresStudentSource struct {
	db       *sql.DB
	redis    redis.Cmdable
	cacheTTL time.Duration
}

func NewPostgresStudentSource(db *sql.DB, rdb redis.Cmdable, cacheTTL time.Duration) *PostgresStudentSource {
	if cacheTTL <= 0 {
		cacheTTL = DefaultStudentCacheTTL
	}
	return &PostgresStudentSource{db: db, redis: rdb, cacheTTL: cacheTTL}
}

func (s *PostgresStudentSource) GetStudent(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	cacheKey := studentCachePrefix + studentID

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var profile models.StudentProfile
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile, nil
			}
		}
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM student_profiles WHERE student_id = $1`, studentID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("query student profile: %w", err)
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode student profile %s: %w", studentID, err)
	}
	if profile.ID == "" {
		profile.ID = studentID
	}

	if s.redis != nil {
		if data, err := json.Marshal(profile); err == nil {
			// cache write failures only cost a later database read
			_ = s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err()
		}
	}

	return &profile, nil
}

package gradeconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists one JSON blob per course config and per link record.
// Works against sqlite (modernc) and postgres (pgx stdlib); both accept $n
// placeholders.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) GetCourseConfig(ctx context.Context, course string) (CourseConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT config_json FROM course_configs WHERE course_name=$1`, course)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CourseConfig{}, ErrNotFound
		}
		return CourseConfig{}, fmt.Errorf("get course config: %w", err)
	}
	var cfg CourseConfig
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		// A malformed blob falls back to the documented default, same as a
		// missing one.
		return CourseConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (s *SQLStore) SaveCourseConfig(ctx context.Context, course string, cfg CourseConfig) error {
	blob, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal course config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO course_configs (course_name,config_json,updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (course_name) DO UPDATE SET config_json=EXCLUDED.config_json, updated_at=EXCLUDED.updated_at`,
		course, string(blob), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save course config: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteCourseConfig(ctx context.Context, course string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM course_configs WHERE course_name=$1`, course)
	if err != nil {
		return fmt.Errorf("delete course config: %w", err)
	}
	return nil
}

func (s *SQLStore) GetCourseLink(ctx context.Context, primary string) (CourseLink, error) {
	row := s.db.QueryRowContext(ctx, `SELECT link_json FROM course_links WHERE primary_course=$1`, primary)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CourseLink{}, ErrNotFound
		}
		return CourseLink{}, fmt.Errorf("get course link: %w", err)
	}
	var link CourseLink
	if err := json.Unmarshal([]byte(blob), &link); err != nil {
		return CourseLink{}, ErrNotFound
	}
	return link, nil
}

func (s *SQLStore) ListCourseLinks(ctx context.Context) ([]CourseLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT link_json FROM course_links ORDER BY primary_course`)
	if err != nil {
		return nil, fmt.Errorf("list course links: %w", err)
	}
	defer rows.Close()
	var out []CourseLink
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var link CourseLink
		if err := json.Unmarshal([]byte(blob), &link); err != nil {
			continue // skip malformed records rather than failing the list
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveCourseLink(ctx context.Context, link CourseLink) error {
	blob, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal course link: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO course_links (primary_course,link_json,updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (primary_course) DO UPDATE SET link_json=EXCLUDED.link_json, updated_at=EXCLUDED.updated_at`,
		link.PrimaryCourse, string(blob), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save course link: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteCourseLink(ctx context.Context, primary string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM course_links WHERE primary_course=$1`, primary)
	if err != nil {
		return fmt.Errorf("delete course link: %w", err)
	}
	return nil
}

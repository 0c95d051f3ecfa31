package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// profileRow is the fixed id of the single profile row.
const profileRow = 1

// profileRepo implements ProfileRepo.
type profileRepo struct {
	drv *entsql.Driver
}

func (r *profileRepo) SetLevel(ctx context.Context, level string) error {
	q, args := sqlite.Insert("profile").
		Set("id", profileRow).
		Set("level", level).
		Set("updated_at", time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

func (r *profileRepo) Level(ctx context.Context) (string, error) {
	q, args := sqlite.Select("level").
		From(sqlite.Table("profile")).
		Where(entsql.EQ("id", profileRow)).
		Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return "", fmt.Errorf("get level: %w", err)
	}
	defer rows.Close()

	var level string
	if rows.Next() {
		if err := rows.Scan(&level); err != nil {
			return "", fmt.Errorf("get level: %w", err)
		}
	}
	return level, rows.Err()
}

// normalizeWord is the storage key for known words.
func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func (r *profileRepo) AddKnownWord(ctx context.Context, word string) error {
	w := normalizeWord(word)
	if w == "" {
		return fmt.Errorf("add known word: empty word")
	}
	q, args := sqlite.Insert("known_words").
		Set("word", w).
		Set("added_at", time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("word"),
			entsql.DoNothing(),
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("add known word: %w", err)
	}
	return nil
}

func (r *profileRepo) KnownWords(ctx context.Context) ([]string, error) {
	q, args := sqlite.Select("word").
		From(sqlite.Table("known_words")).
		OrderBy("word").
		Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("list known words: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan known word: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *profileRepo) RecordAnswer(ctx context.Context, word string, correct bool) error {
	w := strings.TrimSpace(word)
	if w == "" {
		return fmt.Errorf("record answer: empty word")
	}
	c, i := 0, 1
	if correct {
		c, i = 1, 0
	}
	q, args := sqlite.Insert("word_stats").
		Set("word", w).
		Set("correct", c).
		Set("incorrect", i).
		Set("last_seen_at", time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("word"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("correct", c)
				u.Add("incorrect", i)
				u.SetExcluded("last_seen_at")
			}),
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (r *profileRepo) WordStats(ctx context.Context) ([]WordStat, error) {
	q, args := sqlite.Select("word", "correct", "incorrect", "last_seen_at").
		From(sqlite.Table("word_stats")).
		OrderBy(entsql.Desc("last_seen_at"), "word").
		Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("list word stats: %w", err)
	}
	defer rows.Close()

	var out []WordStat
	for rows.Next() {
		var (
			s  WordStat
			ts int64
		)
		if err := rows.Scan(&s.Word, &s.Correct, &s.Incorrect, &ts); err != nil {
			return nil, fmt.Errorf("scan word stat: %w", err)
		}
		s.LastSeenAt = time.UnixMilli(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *profileRepo) Load(ctx context.Context) (*Profile, error) {
	level, err := r.Level(ctx)
	if err != nil {
		return nil, err
	}
	known, err := r.KnownWords(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := r.WordStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Profile{Level: level, KnownWords: known, Stats: stats}, nil
}

func (r *profileRepo) Reset(ctx context.Context) error {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"profile", "known_words", "word_stats"} {
		q, args := sqlite.Delete(table).Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("reset profile: clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Package infrastructure provides the storage, event bus and Discord
// adapters behind the review queue's application ports.
package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/luxradio/queuebot/internal/modules/review_queue/domain"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Compile-time interface checks.
var (
	_ domain.SubmissionRepository = (*SQLiteStore)(nil)
	_ domain.PointsRepository     = (*SQLiteStore)(nil)
	_ domain.WalletRepository     = (*SQLiteStore)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    public_id     TEXT UNIQUE NOT NULL,
    owner_id      INTEGER NOT NULL,
    owner_name    TEXT NOT NULL,
    artist        TEXT NOT NULL,
    title         TEXT NOT NULL,
    link_or_file  TEXT NOT NULL DEFAULT '',
    note          TEXT NOT NULL DEFAULT '',
    tiktok_handle TEXT NOT NULL DEFAULT '',
    tier          TEXT NOT NULL,
    score         REAL NOT NULL DEFAULT 0,
    submitted_at  INTEGER NOT NULL,
    played_at     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_submissions_tier ON submissions(tier);
CREATE INDEX IF NOT EXISTS idx_submissions_owner ON submissions(owner_id);
CREATE INDEX IF NOT EXISTS idx_submissions_free_order
    ON submissions(tier, score DESC, id ASC);

CREATE TABLE IF NOT EXISTS user_points (
    owner_id INTEGER PRIMARY KEY,
    points   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS handle_points (
    handle TEXT PRIMARY KEY,
    points INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS wallets (
    owner_id      INTEGER PRIMARY KEY,
    balance       INTEGER NOT NULL DEFAULT 0,
    watch_seconds INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore persists queue state in SQLite. Every read-then-write tier
// mutation runs in a single immediate transaction, so any number of
// process instances could operate against the same file safely.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the store at path and applies the
// schema. Pass ":memory:" for an ephemeral store in tests.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

// beginImmediate starts a write transaction. The _txlock=immediate DSN
// option makes it take the database write lock up front, so the
// read-then-write sequences below never deadlock on lock upgrades.
func (s *SQLiteStore) beginImmediate(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

const submissionColumns = `id, public_id, owner_id, owner_name, artist, title,
	link_or_file, note, tiktok_handle, tier, score, submitted_at, played_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var (
		sub         domain.Submission
		ownerID     int64
		tier        string
		submittedAt int64
		playedAt    sql.NullInt64
	)
	err := row.Scan(
		&sub.Seq, &sub.PublicID, &ownerID, &sub.OwnerName, &sub.Artist,
		&sub.Title, &sub.LinkOrFile, &sub.Note, &sub.TikTokHandle,
		&tier, &sub.Score, &submittedAt, &playedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.OwnerID = snowflake.ID(ownerID)
	sub.Tier = domain.Tier(tier)
	sub.SubmittedAt = fromMillis(submittedAt)
	if playedAt.Valid {
		t := fromMillis(playedAt.Int64)
		sub.PlayedAt = &t
	}
	return &sub, nil
}

// tierOrderBy returns the ORDER BY clause for the tier's serving order.
func tierOrderBy(tier domain.Tier) string {
	if tier == domain.TierFree {
		return "ORDER BY score DESC, id ASC"
	}
	return "ORDER BY id ASC"
}

// Create inserts the submission, retrying with a fresh public ID on the
// rare token collision.
func (s *SQLiteStore) Create(ctx context.Context, sub *domain.Submission) error {
	for {
		id := newPublicID()
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO submissions (public_id, owner_id, owner_name, artist,
				title, link_or_file, note, tiktok_handle, tier, score, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(id), int64(sub.OwnerID), sub.OwnerName, sub.Artist,
			sub.Title, sub.LinkOrFile, sub.Note, sub.TikTokHandle,
			string(sub.Tier), sub.Score, toMillis(sub.SubmittedAt),
		)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("submission seq: %w", err)
		}
		sub.Seq = seq
		sub.PublicID = id
		return nil
	}
}

// GetByPublicID returns the submission, or ErrSubmissionNotFound.
func (s *SQLiteStore) GetByPublicID(
	ctx context.Context,
	id domain.PublicID,
) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE public_id = ?",
		string(id))
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// SetTier reassigns the tier inside one transaction and returns the
// previous tier.
func (s *SQLiteStore) SetTier(
	ctx context.Context,
	id domain.PublicID,
	tier domain.Tier,
) (domain.Tier, error) {
	if !tier.IsValid() {
		return "", domain.ErrInvalidTier
	}

	tx, err := s.beginImmediate(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT tier FROM submissions WHERE public_id = ?", string(id))
	var current string
	if err := row.Scan(&current); errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrSubmissionNotFound
	} else if err != nil {
		return "", fmt.Errorf("read tier: %w", err)
	}

	previous := domain.Tier(current)
	if previous.IsTerminal() && !(tier == domain.TierRemoved && previous != domain.TierRemoved) {
		return "", domain.ErrAlreadyTerminal
	}

	if tier == domain.TierPlayed {
		_, err = tx.ExecContext(ctx, `
			UPDATE submissions
			SET tier = ?, played_at = COALESCE(played_at, ?)
			WHERE public_id = ?`,
			string(tier), toMillis(time.Now()), string(id))
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE submissions SET tier = ? WHERE public_id = ?",
			string(tier), string(id))
	}
	if err != nil {
		return "", fmt.Errorf("update tier: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tier change: %w", err)
	}
	return previous, nil
}

// SetScore writes a recomputed score. Terminal submissions keep their
// frozen score, so the WHERE clause excludes them.
func (s *SQLiteStore) SetScore(ctx context.Context, seq int64, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET score = ?
		WHERE id = ? AND tier NOT IN (?, ?)`,
		score, seq, string(domain.TierPlayed), string(domain.TierRemoved))
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

// ListByTier returns one page of the tier in serving order plus the
// total count.
func (s *SQLiteStore) ListByTier(
	ctx context.Context,
	tier domain.Tier,
	limit, offset int,
) ([]*domain.Submission, int, error) {
	if !tier.IsValid() {
		return nil, 0, domain.ErrInvalidTier
	}

	var total int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE tier = ?", string(tier))
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tier: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE tier = ? "+
			tierOrderBy(tier)+" LIMIT ? OFFSET ?",
		string(tier), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tier: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tier: %w", err)
	}
	return subs, total, nil
}

// ActiveByOwner returns the owner's newest non-terminal submission.
func (s *SQLiteStore) ActiveByOwner(
	ctx context.Context,
	owner snowflake.ID,
) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+` FROM submissions
		WHERE owner_id = ? AND played_at IS NULL AND tier NOT IN (?, ?)
		ORDER BY id DESC LIMIT 1`,
		int64(owner), string(domain.TierPlayed), string(domain.TierRemoved))
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEligibleSubmission
	}
	if err != nil {
		return nil, fmt.Errorf("active by owner: %w", err)
	}
	return sub, nil
}

// PromoteActive promotes the owner's newest active submission to target
// when target outranks its current tier. The lookup, the rank check and
// the write share one immediate transaction, so a promotion won by a
// concurrent larger gift can never be overwritten by a smaller one.
func (s *SQLiteStore) PromoteActive(
	ctx context.Context,
	owner snowflake.ID,
	target domain.Tier,
) (*domain.Submission, error) {
	targetRank, ok := domain.RankOf(target)
	if !ok {
		return nil, domain.ErrInvalidTier
	}

	tx, err := s.beginImmediate(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+submissionColumns+` FROM submissions
		WHERE owner_id = ? AND played_at IS NULL AND tier NOT IN (?, ?)
		ORDER BY id DESC LIMIT 1`,
		int64(owner), string(domain.TierPlayed), string(domain.TierRemoved))
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEligibleSubmission
	}
	if err != nil {
		return nil, fmt.Errorf("find active submission: %w", err)
	}

	currentRank, ok := domain.RankOf(sub.Tier)
	if ok && targetRank >= currentRank {
		return nil, domain.ErrNoEligibleSubmission
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE submissions SET tier = ? WHERE id = ?",
		string(target), sub.Seq); err != nil {
		return nil, fmt.Errorf("promote submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit promotion: %w", err)
	}
	return sub, nil
}

// ClaimHead atomically claims the tier's head submission. The selection
// and the tier update happen in one transaction; the conditional UPDATE
// detects a candidate another claimer got to first and moves on to the
// next one instead of returning it.
func (s *SQLiteStore) ClaimHead(
	ctx context.Context,
	tier domain.Tier,
) (*domain.Submission, error) {
	tx, err := s.beginImmediate(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for offset := 0; ; offset++ {
		row := tx.QueryRowContext(ctx,
			"SELECT "+submissionColumns+` FROM submissions
			WHERE tier = ? AND played_at IS NULL `+
				tierOrderBy(tier)+" LIMIT 1 OFFSET ?",
			string(tier), offset)
		sub, err := scanSubmission(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoCandidate
		}
		if err != nil {
			return nil, fmt.Errorf("select candidate: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE submissions SET tier = ?, played_at = ?
			WHERE id = ? AND tier = ? AND played_at IS NULL`,
			string(domain.TierPlayed), toMillis(time.Now()),
			sub.Seq, string(tier))
		if err != nil {
			return nil, fmt.Errorf("claim candidate: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim candidate: %w", err)
		}
		if affected == 0 {
			// Lost the race for this candidate; try the next one.
			continue
		}

		if tier == domain.TierFree {
			if _, err := tx.ExecContext(ctx,
				"UPDATE user_points SET points = 0 WHERE owner_id = ?",
				int64(sub.OwnerID)); err != nil {
				return nil, fmt.Errorf("reset user points: %w", err)
			}
			if sub.TikTokHandle != "" {
				if _, err := tx.ExecContext(ctx,
					"UPDATE handle_points SET points = 0 WHERE handle = ?",
					sub.TikTokHandle); err != nil {
					return nil, fmt.Errorf("reset handle points: %w", err)
				}
			}
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit claim: %w", err)
		}
		return sub, nil
	}
}

// --- PointsRepository ---

func (s *SQLiteStore) UserPoints(ctx context.Context, owner snowflake.ID) (int64, error) {
	var points int64
	row := s.db.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT points FROM user_points WHERE owner_id = ?), 0)",
		int64(owner))
	if err := row.Scan(&points); err != nil {
		return 0, fmt.Errorf("user points: %w", err)
	}
	return points, nil
}

func (s *SQLiteStore) HandlePoints(ctx context.Context, handle string) (int64, error) {
	var points int64
	row := s.db.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT points FROM handle_points WHERE handle = ?), 0)",
		handle)
	if err := row.Scan(&points); err != nil {
		return 0, fmt.Errorf("handle points: %w", err)
	}
	return points, nil
}

func (s *SQLiteStore) AddUserPoints(
	ctx context.Context,
	owner snowflake.ID,
	points int64,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_points (owner_id, points) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET points = points + excluded.points`,
		int64(owner), points)
	if err != nil {
		return fmt.Errorf("add user points: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddHandlePoints(ctx context.Context, handle string, points int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO handle_points (handle, points) VALUES (?, ?)
		ON CONFLICT (handle) DO UPDATE SET points = points + excluded.points`,
		handle, points)
	if err != nil {
		return fmt.Errorf("add handle points: %w", err)
	}
	return nil
}

// --- WalletRepository ---

func (s *SQLiteStore) Balance(ctx context.Context, owner snowflake.ID) (int64, error) {
	var balance int64
	row := s.db.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT balance FROM wallets WHERE owner_id = ?), 0)",
		int64(owner))
	if err := row.Scan(&balance); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return balance, nil
}

func (s *SQLiteStore) Credit(ctx context.Context, owner snowflake.ID, coins int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (owner_id, balance) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET balance = balance + excluded.balance`,
		int64(owner), coins)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TopBalances(
	ctx context.Context,
	limit int,
) ([]domain.WalletEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, balance FROM wallets
		ORDER BY balance DESC, owner_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.WalletEntry
	for rows.Next() {
		var (
			owner   int64
			balance int64
		)
		if err := rows.Scan(&owner, &balance); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		entries = append(entries, domain.WalletEntry{
			OwnerID: snowflake.ID(owner),
			Balance: balance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	return entries, nil
}

// AddWatchTime accumulates watch seconds and pays out one coin per full
// half hour, carrying the remainder, all in one transaction.
func (s *SQLiteStore) AddWatchTime(
	ctx context.Context,
	owner snowflake.ID,
	seconds int64,
) (int64, error) {
	tx, err := s.beginImmediate(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (owner_id, watch_seconds) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE
		SET watch_seconds = watch_seconds + excluded.watch_seconds`,
		int64(owner), seconds); err != nil {
		return 0, fmt.Errorf("add watch time: %w", err)
	}

	var total int64
	row := tx.QueryRowContext(ctx,
		"SELECT watch_seconds FROM wallets WHERE owner_id = ?", int64(owner))
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("read watch time: %w", err)
	}

	coins := total / secondsPerCoin
	if coins > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = balance + ?, watch_seconds = watch_seconds % ?
			WHERE owner_id = ?`,
			coins, int64(secondsPerCoin), int64(owner)); err != nil {
			return 0, fmt.Errorf("pay out watch time: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit watch time: %w", err)
	}
	return coins, nil
}

// PurchaseSkip debits the cost and promotes the owner's newest
// purchasable submission in one transaction.
func (s *SQLiteStore) PurchaseSkip(
	ctx context.Context,
	owner snowflake.ID,
	target domain.Tier,
	cost int64,
) (*domain.Submission, error) {
	if !target.IsValid() || target.IsTerminal() {
		return nil, domain.ErrInvalidTier
	}

	tx, err := s.beginImmediate(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var balance int64
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT balance FROM wallets WHERE owner_id = ?), 0)",
		int64(owner))
	if err := row.Scan(&balance); err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance < cost {
		return nil, domain.ErrInsufficientBalance
	}

	row = tx.QueryRowContext(ctx,
		"SELECT "+submissionColumns+` FROM submissions
		WHERE owner_id = ? AND played_at IS NULL AND tier IN (?, ?, ?)
		ORDER BY id DESC LIMIT 1`,
		int64(owner), string(domain.TierFree),
		string(domain.TierPendingSkips), string(domain.TierFiveSkip))
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEligibleSubmission
	}
	if err != nil {
		return nil, fmt.Errorf("find purchasable submission: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance = balance - ? WHERE owner_id = ?",
		cost, int64(owner)); err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE submissions SET tier = ? WHERE id = ?",
		string(target), sub.Seq); err != nil {
		return nil, fmt.Errorf("move submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}
	return sub, nil
}

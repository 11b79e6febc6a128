package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3" // SQLite driver
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        name TEXT NOT NULL DEFAULT '',
        background TEXT NOT NULL DEFAULT '',
        experience TEXT NOT NULL DEFAULT '',
        job_location TEXT NOT NULL DEFAULT '',
        job_type TEXT NOT NULL DEFAULT '',
        streak_current INTEGER NOT NULL DEFAULT 0,
        streak_longest INTEGER NOT NULL DEFAULT 0,
        streak_last_activity DATETIME,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS skills (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        name_key TEXT NOT NULL,
        level TEXT NOT NULL,
        category TEXT NOT NULL,
        added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    CREATE UNIQUE INDEX IF NOT EXISTS idx_skills_user_name ON skills (user_id, name_key);

    CREATE TABLE IF NOT EXISTS career_goals (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        title_key TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        priority TEXT NOT NULL DEFAULT 'medium',
        completed BOOLEAN DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    CREATE UNIQUE INDEX IF NOT EXISTS idx_goals_user_title ON career_goals (user_id, title_key);

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        session_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        metadata_json TEXT,
        tokens_input INTEGER,
        tokens_output INTEGER,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    CREATE INDEX IF NOT EXISTS idx_messages_user_session ON messages (user_id, session_id, created_at);
    `
	_, err := s.db.Exec(schema)
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// User methods

const userColumns = `id, external_user_id, password_hash, name, background, experience, job_location, job_type,
    streak_current, streak_longest, streak_last_activity, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var lastActivity sql.NullTime
	err := row.Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.Name, &user.Background, &user.Experience,
		&user.Preferences.JobLocation, &user.Preferences.JobType,
		&user.Streak.Current, &user.Streak.Longest, &lastActivity, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastActivity.Valid {
		t := lastActivity.Time
		user.Streak.LastActivity = &t
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE external_user_id = ?", externalUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByID(id int64) (*User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash, name string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash, name, created_at) VALUES (?, ?, ?, ?)",
		externalUserID, passwordHash, name, s.now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", externalUserID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUserByID(id)
}

func (s *SQLiteStore) UpdateProfile(userID int64, upd ProfileUpdate) (*User, error) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	add("name", upd.Name)
	add("background", upd.Background)
	add("experience", upd.Experience)
	add("job_location", upd.JobLocation)
	add("job_type", upd.JobType)

	if len(sets) > 0 {
		args = append(args, userID)
		res, err := s.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to execute profile update: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetUserByID(userID)
}

// UpdateStreak records activity for the user at the current time and returns the new streak.
func (s *SQLiteStore) UpdateStreak(userID int64) (Streak, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Streak{}, fmt.Errorf("failed to begin streak update: %w", err)
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Streak{}, ErrNotFound
		}
		return Streak{}, fmt.Errorf("failed to load streak: %w", err)
	}

	next := user.Streak.Next(s.now())
	_, err = tx.Exec("UPDATE users SET streak_current = ?, streak_longest = ?, streak_last_activity = ? WHERE id = ?",
		next.Current, next.Longest, *next.LastActivity, userID)
	if err != nil {
		return Streak{}, fmt.Errorf("failed to execute streak update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Streak{}, fmt.Errorf("failed to commit streak update: %w", err)
	}
	return next, nil
}

// Skill and goal methods

func (s *SQLiteStore) GetSkills(userID int64) ([]Skill, error) {
	rows, err := s.db.Query("SELECT id, user_id, name, level, category, added_at FROM skills WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	var skills []Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.UserID, &sk.Name, &sk.Level, &sk.Category, &sk.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill row: %w", err)
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// foldKey is the uniqueness key for skill names and goal titles. SQLite's NOCASE
// only folds ASCII, so case folding happens here.
func foldKey(s string) string {
	return strings.ToLower(s)
}

// AddSkills inserts the skills whose names are not already present for the user,
// comparing case-insensitively, and returns how many were added.
func (s *SQLiteStore) AddSkills(userID int64, skills []Skill) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin skill insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO skills (user_id, name, name_key, level, category, added_at) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare skill insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	now := s.now()
	for _, sk := range skills {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			continue
		}
		res, err := stmt.Exec(userID, name, foldKey(name), sk.Level, sk.Category, now)
		if err != nil {
			return 0, fmt.Errorf("failed to execute skill insert: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit skills: %w", err)
	}
	return added, nil
}

func (s *SQLiteStore) GetGoals(userID int64) ([]CareerGoal, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, description, priority, completed, created_at FROM career_goals WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []CareerGoal
	for rows.Next() {
		var g CareerGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Priority, &g.Completed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// AddGoals inserts the goals whose titles are not already present for the user,
// comparing case-insensitively, and returns how many were added.
func (s *SQLiteStore) AddGoals(userID int64, goals []CareerGoal) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin goal insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO career_goals (user_id, title, title_key, description, priority, completed, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare goal insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	now := s.now()
	for _, g := range goals {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			continue
		}
		res, err := stmt.Exec(userID, title, foldKey(title), g.Description, g.Priority, g.Completed, now)
		if err != nil {
			return 0, fmt.Errorf("failed to execute goal insert: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit goals: %w", err)
	}
	return added, nil
}

func (s *SQLiteStore) GetProfile(userID int64) (*Profile, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	skills, err := s.GetSkills(userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.GetGoals(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Skills: skills, CareerGoals: goals}, nil
}

// Message methods

func (s *SQLiteStore) CreateMessage(msg *ChatMessage) error {
	msg.ID = uuid.NewString() // Ensure ID is set
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	var metadataJSON sql.NullString
	if msg.Metadata != nil {
		b, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = sql.NullString{String: string(b), Valid: true}
	}
	var tokensIn, tokensOut sql.NullInt64
	if msg.Tokens != nil {
		tokensIn = sql.NullInt64{Int64: int64(msg.Tokens.Input), Valid: true}
		tokensOut = sql.NullInt64{Int64: int64(msg.Tokens.Output), Valid: true}
	}

	stmt, err := s.db.Prepare(`INSERT INTO messages (id, user_id, session_id, role, content, metadata_json, tokens_input, tokens_output, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(msg.ID, msg.UserID, msg.SessionID, msg.Role, msg.Content, metadataJSON, tokensIn, tokensOut, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

// GetSessionMessages returns a page of a session's messages in chronological order.
func (s *SQLiteStore) GetSessionMessages(userID int64, sessionID string, limit, offset int) ([]ChatMessage, error) {
	query := `
        SELECT id, user_id, session_id, role, content, metadata_json, tokens_input, tokens_output, created_at
        FROM messages
        WHERE user_id = ? AND session_id = ?
        ORDER BY created_at ASC, rowid ASC
        LIMIT ? OFFSET ?
    `
	rows, err := s.db.Query(query, userID, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var metadataJSON sql.NullString
		var tokensIn, tokensOut sql.NullInt64
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.SessionID, &msg.Role, &msg.Content, &metadataJSON, &tokensIn, &tokensOut, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			var md Metadata
			if err := json.Unmarshal([]byte(metadataJSON.String), &md); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for message %s: %w", msg.ID, err)
			}
			msg.Metadata = &md
		}
		if tokensIn.Valid || tokensOut.Valid {
			msg.Tokens = &TokenUsage{Input: int(tokensIn.Int64), Output: int(tokensOut.Int64)}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) CountSessionMessages(userID int64, sessionID string) (int, error) {
	var total int
	err := s.db.QueryRow("SELECT COUNT(*) FROM messages WHERE user_id = ? AND session_id = ?", userID, sessionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return total, nil
}

// ListSessions groups the user's messages by session, newest activity first.
func (s *SQLiteStore) ListSessions(userID int64, limit int) ([]SessionSummary, error) {
	query := `
        SELECT m.session_id, m.content, m.created_at, c.cnt
        FROM messages m
        JOIN (
            SELECT session_id, COUNT(*) AS cnt, MAX(rowid) AS last_rowid
            FROM messages
            WHERE user_id = ?
            GROUP BY session_id
        ) c ON m.rowid = c.last_rowid
        ORDER BY m.created_at DESC, m.rowid DESC
        LIMIT ?
    `
	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.SessionID, &ss.LastMessage, &ss.LastActivity, &ss.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, ss)
	}
	return sessions, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
// Schema setup is handled by deploy-time migrations, matching the table
// shapes in internal/store/sqlite/schema.sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users         { return &users{db: s.db} }
func (s *pgStore) Turns() store.Turns         { return &turns{db: s.db} }
func (s *pgStore) Reminders() store.Reminders { return &reminders{db: s.db} }
func (s *pgStore) Facts() store.Facts         { return &facts{db: s.db} }
func (s *pgStore) Budget() store.Budget       { return &budget{db: s.db} }
func (s *pgStore) Notes() store.Notes         { return &notes{db: s.db} }

// HealthPing implements health probing for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Put(ctx context.Context, m *model.User) (*model.User, error) {
	now := m.CreationTime
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, role, creation_time) VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE SET role=EXCLUDED.role
    `, m.UserID, string(m.Role), now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	var role string
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, role, creation_time FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &role, &out.CreationTime); err != nil {
		return nil, mapNotFound(err)
	}
	out.Role = model.Role(role)
	return &out, nil
}

// --- Turns ---

type turns struct{ db *sql.DB }

func (t *turns) Create(ctx context.Context, m *model.ConversationTurn) (*model.ConversationTurn, error) {
	out := *m
	if out.TurnID == "" {
		out.TurnID = uuid.New().String()
	}
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO conversation_turns
            (user_id, turn_id, thread_id, user_message, response, creation_time, expiration_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, out.UserID, out.TurnID, out.ThreadID, out.UserMessage, out.Response, out.CreationTime, out.ExpirationTime)
	if err != nil {
		return nil, err
	}
	_, _ = t.db.ExecContext(ctx, `
        DELETE FROM conversation_turns WHERE user_id=$1 AND expiration_time <= $2
    `, out.UserID, out.CreationTime)
	return &out, nil
}

func (t *turns) Latest(ctx context.Context, userID string, now time.Time) (*model.ConversationTurn, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT user_id, turn_id, thread_id, user_message, response, creation_time, expiration_time
        FROM conversation_turns
        WHERE user_id=$1 AND expiration_time > $2
        ORDER BY creation_time DESC LIMIT 1
    `, userID, now)
	return scanTurn(row)
}

func (t *turns) List(ctx context.Context, req model.ListTurnsRequest) ([]*model.ConversationTurn, error) {
	q := `
        SELECT user_id, turn_id, thread_id, user_message, response, creation_time, expiration_time
        FROM conversation_turns
        WHERE user_id=$1 AND thread_id=$2 AND expiration_time > $3`
	args := []interface{}{req.UserID, req.ThreadID, req.Now}
	if req.Before != nil {
		q += fmt.Sprintf(` AND creation_time < $%d`, len(args)+1)
		args = append(args, *req.Before)
	}
	q += ` ORDER BY creation_time DESC`
	if req.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, req.Limit)
	}
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.ConversationTurn
	for rows.Next() {
		ct, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, ct)
	}
	return res, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanTurn(row rowScanner) (*model.ConversationTurn, error) {
	var out model.ConversationTurn
	if err := row.Scan(&out.UserID, &out.TurnID, &out.ThreadID, &out.UserMessage,
		&out.Response, &out.CreationTime, &out.ExpirationTime); err != nil {
		return nil, mapNotFound(err)
	}
	return &out, nil
}

// --- Reminders ---

type reminders struct{ db *sql.DB }

func (r *reminders) Create(ctx context.Context, m *model.Reminder) (*model.Reminder, error) {
	out := *m
	if out.ReminderID == "" {
		out.ReminderID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.ReminderPending
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO reminders
            (user_id, reminder_id, text, due_time, status, creation_time, expiration_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, out.UserID, out.ReminderID, out.Text, out.DueTime, string(out.Status), out.CreationTime, out.ExpirationTime)
	if err != nil {
		return nil, err
	}
	_, _ = r.db.ExecContext(ctx, `
        DELETE FROM reminders WHERE user_id=$1 AND expiration_time <= $2
    `, out.UserID, out.CreationTime)
	return &out, nil
}

func (r *reminders) GetByID(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT user_id, reminder_id, text, due_time, status, creation_time, expiration_time
        FROM reminders WHERE user_id=$1 AND reminder_id=$2
    `, userID, reminderID)
	return scanReminder(row)
}

func (r *reminders) Due(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, reminder_id, text, due_time, status, creation_time, expiration_time
        FROM reminders
        WHERE user_id=$1 AND status=$2 AND due_time <= $3 AND expiration_time > $3
        ORDER BY due_time ASC
    `, userID, string(model.ReminderPending), now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	return res, rows.Err()
}

func (r *reminders) ListPending(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, reminder_id, text, due_time, status, creation_time, expiration_time
        FROM reminders
        WHERE user_id=$1 AND status=$2 AND expiration_time > $3
        ORDER BY due_time ASC
    `, userID, string(model.ReminderPending), now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	return res, rows.Err()
}

func (r *reminders) Next(ctx context.Context, userID string, now time.Time) (*model.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT user_id, reminder_id, text, due_time, status, creation_time, expiration_time
        FROM reminders
        WHERE user_id=$1 AND status=$2 AND due_time >= $3 AND expiration_time > $3
        ORDER BY due_time ASC LIMIT 1
    `, userID, string(model.ReminderPending), now)
	return scanReminder(row)
}

func (r *reminders) Complete(ctx context.Context, userID, reminderID string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE reminders SET status=$1 WHERE user_id=$2 AND reminder_id=$3
    `, string(model.ReminderCompleted), userID, reminderID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanReminder(row rowScanner) (*model.Reminder, error) {
	var out model.Reminder
	var status string
	if err := row.Scan(&out.UserID, &out.ReminderID, &out.Text, &out.DueTime,
		&status, &out.CreationTime, &out.ExpirationTime); err != nil {
		return nil, mapNotFound(err)
	}
	out.Status = model.ReminderStatus(status)
	return &out, nil
}

// --- Facts ---

type facts struct{ db *sql.DB }

func (f *facts) Create(ctx context.Context, m *model.AdminFact) (*model.AdminFact, error) {
	out := *m
	if out.FactID == "" {
		out.FactID = uuid.New().String()
	}
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO admin_facts (fact_id, text, creation_time, expiration_time)
        VALUES ($1,$2,$3,$4)
    `, out.FactID, out.Text, out.CreationTime, out.ExpirationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *facts) ListActive(ctx context.Context, now time.Time) ([]*model.AdminFact, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT fact_id, text, creation_time, expiration_time
        FROM admin_facts WHERE expiration_time > $1
        ORDER BY creation_time DESC
    `, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.AdminFact
	for rows.Next() {
		var fa model.AdminFact
		if err := rows.Scan(&fa.FactID, &fa.Text, &fa.CreationTime, &fa.ExpirationTime); err != nil {
			return nil, err
		}
		res = append(res, &fa)
	}
	return res, rows.Err()
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	out := *m
	if out.NoteID == "" {
		out.NoteID = uuid.New().String()
	}
	_, err := n.db.ExecContext(ctx, `
        INSERT INTO notes
            (user_id, note_id, title, content, creation_time, update_time, expiration_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, out.UserID, out.NoteID, out.Title, out.Content, out.CreationTime, out.UpdateTime, out.ExpirationTime)
	if err != nil {
		return nil, err
	}
	_, _ = n.db.ExecContext(ctx, `
        DELETE FROM notes WHERE user_id=$1 AND expiration_time <= $2
    `, out.UserID, out.CreationTime)
	return &out, nil
}

func (n *notes) ListByUser(ctx context.Context, userID string, now time.Time) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT user_id, note_id, title, content, creation_time, update_time, expiration_time
        FROM notes
        WHERE user_id=$1 AND expiration_time > $2
        ORDER BY update_time DESC
    `, userID, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		var nt model.Note
		if err := rows.Scan(&nt.UserID, &nt.NoteID, &nt.Title, &nt.Content,
			&nt.CreationTime, &nt.UpdateTime, &nt.ExpirationTime); err != nil {
			return nil, err
		}
		res = append(res, &nt)
	}
	return res, rows.Err()
}

func (n *notes) Update(ctx context.Context, m *model.Note) error {
	res, err := n.db.ExecContext(ctx, `
        UPDATE notes SET title=$1, content=$2, update_time=$3
        WHERE user_id=$4 AND note_id=$5 AND expiration_time > $3
    `, m.Title, m.Content, m.UpdateTime, m.UserID, m.NoteID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (n *notes) Delete(ctx context.Context, userID, noteID string) error {
	res, err := n.db.ExecContext(ctx, `
        DELETE FROM notes WHERE user_id=$1 AND note_id=$2
    `, userID, noteID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- Budget ---

type budget struct{ db *sql.DB }

func (b *budget) Create(ctx context.Context, m *model.BudgetEntry) (*model.BudgetEntry, error) {
	out := *m
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	_, err := b.db.ExecContext(ctx, `
        INSERT INTO budget_entries (entry_id, org, category, amount, duration, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, out.EntryID, out.Org, out.Category, out.Amount, out.Duration, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *budget) ListRecent(ctx context.Context, org string, limit int) ([]*model.BudgetEntry, error) {
	rows, err := b.db.QueryContext(ctx, `
        SELECT entry_id, org, category, amount, duration, creation_time
        FROM budget_entries WHERE org=$1
        ORDER BY creation_time DESC LIMIT $2
    `, org, limit)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (b *budget) ListByCategory(ctx context.Context, org, category string) ([]*model.BudgetEntry, error) {
	rows, err := b.db.QueryContext(ctx, `
        SELECT entry_id, org, category, amount, duration, creation_time
        FROM budget_entries WHERE org=$1 AND category=$2
        ORDER BY creation_time DESC
    `, org, category)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (b *budget) Totals(ctx context.Context, org string) (float64, map[string]float64, error) {
	rows, err := b.db.QueryContext(ctx, `
        SELECT category, SUM(amount) FROM budget_entries WHERE org=$1 GROUP BY category
    `, org)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = rows.Close() }()
	var total float64
	byCategory := make(map[string]float64)
	for rows.Next() {
		var cat string
		var sum float64
		if err := rows.Scan(&cat, &sum); err != nil {
			return 0, nil, err
		}
		byCategory[cat] = sum
		total += sum
	}
	return total, byCategory, rows.Err()
}

func collectEntries(rows *sql.Rows) ([]*model.BudgetEntry, error) {
	defer func() { _ = rows.Close() }()
	var res []*model.BudgetEntry
	for rows.Next() {
		var e model.BudgetEntry
		if err := rows.Scan(&e.EntryID, &e.Org, &e.Category, &e.Amount, &e.Duration, &e.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

// ConversationRepository handles conversation persistence
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// defaultName derives a readable name from a conversation id.
func defaultName(id string) string {
	if len(id) >= 8 {
		return "chat_" + id[:8]
	}
	return "chat_" + id
}

// Create creates a new empty conversation. An empty name gets a default
// derived from the id.
func (r *ConversationRepository) Create(name string) (*domain.Conversation, error) {
	id := uuid.New().String()
	if name == "" {
		name = defaultName(id)
	}
	now := time.Now()

	_, err := r.db.Exec(`
		INSERT INTO conversations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, id, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &domain.Conversation{ID: id, Name: name, History: []domain.Message{}}, nil
}

// Get retrieves a conversation with its full history. Unknown ids yield
// domain.ErrNotFound.
func (r *ConversationRepository) Get(id string) (*domain.Conversation, error) {
	conv := &domain.Conversation{ID: id, History: []domain.Message{}}

	err := r.db.QueryRow(`
		SELECT name FROM conversations WHERE id = ?
	`, id).Scan(&conv.Name)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT role, content, ts
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.Message
		var ts sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &ts); err != nil {
			return nil, err
		}
		msg.Timestamp = ts.String
		conv.History = append(conv.History, msg)
	}

	return conv, rows.Err()
}

// AppendExchange appends a user message and an assistant message to the
// conversation in a single transaction, creating the conversation on first
// use. Concurrent appends to the same id never interleave within a pair.
func (r *ConversationRepository) AppendExchange(id string, userMsg, assistantMsg domain.Message) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		_, err = tx.Exec(`
			INSERT INTO conversations (id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, id, defaultName(id), now, now)
		if err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
	}

	for _, msg := range []domain.Message{userMsg, assistantMsg} {
		_, err = tx.Exec(`
			INSERT INTO messages (id, conversation_id, role, content, ts)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), id, msg.Role, msg.Content, msg.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	return tx.Commit()
}

// Save stores a client-supplied history as a new named conversation.
func (r *ConversationRepository) Save(name string, history []domain.Message) (*domain.Conversation, error) {
	id := uuid.New().String()
	if name == "" {
		name = defaultName(id)
	}
	now := time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, id, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	for _, msg := range history {
		_, err = tx.Exec(`
			INSERT INTO messages (id, conversation_id, role, content, ts)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), id, msg.Role, msg.Content, msg.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.Conversation{ID: id, Name: name, History: history}, nil
}

// List returns metadata for all conversations, most recently updated first.
func (r *ConversationRepository) List() ([]domain.ConversationInfo, error) {
	rows, err := r.db.Query(`
		SELECT id, name, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []domain.ConversationInfo
	for rows.Next() {
		var info domain.ConversationInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// Delete removes a conversation and its messages. Unknown ids yield
// domain.ErrNotFound.
func (r *ConversationRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

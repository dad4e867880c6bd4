package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opdeck/opdeck/internal/apperr"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID        string
	Title     string
	Tags      []string
	Body      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GraphNode is one note in the link graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GraphLink is one directed edge in the link graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Upsert inserts or replaces a note, its FTS entry, and links within a
// transaction.
func (db *DB) Upsert(row NoteRow, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	// Body is stored in the notes table too, for the fallback search.
	_, err = tx.Exec(`
		INSERT INTO notes (id, title, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.ID, row.Title, string(tagsJSON), row.Body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, row.ID, row.Title, row.Body, row.Tags); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, row.ID)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, type) VALUES (?, ?, 'inline')`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(row.ID, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Delete removes a note, its FTS entry, and outgoing links.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)

	return tx.Commit()
}

// Get returns one indexed note, or apperr.ErrNotFound.
func (db *DB) Get(id string) (*NoteRow, error) {
	var row NoteRow
	var tagsJSON string
	err := db.conn.QueryRow(`
		SELECT id, title, tags, body, updated_at FROM notes WHERE id = ?
	`, id).Scan(&row.ID, &row.Title, &tagsJSON, &row.Body, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &row.Tags); err != nil {
		row.Tags = nil
	}
	return &row, nil
}

// AllIDs returns every indexed note id.
func (db *DB) AllIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT id FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// Backlinks returns all note ids that link to the given target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ?`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Graph returns every note and every link edge.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	rows, err := db.conn.Query(`SELECT id, title FROM notes`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	linkRows, err := db.conn.Query(`SELECT source, target FROM links`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer linkRows.Close()

	var links []GraphLink
	for linkRows.Next() {
		var l GraphLink
		if err := linkRows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, linkRows.Err()
}

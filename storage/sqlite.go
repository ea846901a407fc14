package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/item"
	"github.com/petscheit/sn-mpt/trie"
)

var logger = slog.Default().With("component", "storage")

const schema = `
CREATE TABLE IF NOT EXISTS trie_nodes (
	idx INTEGER PRIMARY KEY AUTOINCREMENT,
	hash BLOB NOT NULL,
	data BLOB,
	trie_idx INTEGER UNIQUE NOT NULL
);
CREATE TABLE IF NOT EXISTS leaves (
	idx INTEGER PRIMARY KEY AUTOINCREMENT,
	key BLOB NOT NULL,
	commitment BLOB NOT NULL,
	value BLOB,
	batch_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS batches (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER,
	status TEXT NOT NULL,
	root_idx INTEGER NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES batches(id)
);
`

// querier is satisfied by both *sql.DB and *sql.Tx, letting every query
// method below run unmodified whether or not it's inside a Transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SQLite is the database/sql + mattn/go-sqlite3 Store adapter (spec.md §6).
type SQLite struct {
	db *sql.DB
	q  querier
}

// Open creates (or reuses) the sqlite file at path and ensures the schema
// exists. Pass ":memory:" for an ephemeral, test-mode database, mirroring
// ConnectionManager::new(file, test_mode) in original_source/rust/src/db/mod.rs.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: creating schema: %w", err)
	}
	logger.Info("opened sqlite store", "path", path)
	return &SQLite{db: db, q: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(index uint64) (trie.StoredNode, bool, error) {
	var data []byte
	err := s.q.QueryRow(`SELECT data FROM trie_nodes WHERE trie_idx = ?`, index).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return trie.StoredNode{}, false, nil
	}
	if err != nil {
		return trie.StoredNode{}, false, fmt.Errorf("storage: get node %d: %w", index, err)
	}
	node, err := trie.DecodeStoredNode(data)
	if err != nil {
		return trie.StoredNode{}, false, err
	}
	return node, true, nil
}

func (s *SQLite) Hash(index uint64) (felt.Felt, bool, error) {
	var hashBytes []byte
	err := s.q.QueryRow(`SELECT hash FROM trie_nodes WHERE trie_idx = ?`, index).Scan(&hashBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return felt.Felt{}, false, nil
	}
	if err != nil {
		return felt.Felt{}, false, fmt.Errorf("storage: get hash %d: %w", index, err)
	}
	return felt.FromBEBytes(hashBytes), true, nil
}

func (s *SQLite) Leaf(path felt.BitPath) (felt.Felt, bool, error) {
	key := felt.FromBits(path)
	keyBytes := key.ToBEBytes()
	var commitmentBytes []byte
	err := s.q.QueryRow(`SELECT commitment FROM leaves WHERE key = ? ORDER BY idx DESC LIMIT 1`, keyBytes[:]).Scan(&commitmentBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return felt.Felt{}, false, nil
	}
	if err != nil {
		return felt.Felt{}, false, fmt.Errorf("storage: get leaf: %w", err)
	}
	return felt.FromBEBytes(commitmentBytes), true, nil
}

func (s *SQLite) PersistNodes(nodes []trie.StoredNode, hashes []felt.Felt, startIndex uint64) error {
	if len(nodes) != len(hashes) {
		return fmt.Errorf("storage: persist nodes: %d nodes but %d hashes", len(nodes), len(hashes))
	}
	for i, n := range nodes {
		encoded, err := n.Encode()
		if err != nil {
			return err
		}
		hashBytes := hashes[i].ToBEBytes()
		trieIdx := startIndex + uint64(i)
		if _, err := s.q.Exec(
			`INSERT INTO trie_nodes (hash, data, trie_idx) VALUES (?, ?, ?)`,
			hashBytes[:], encoded, trieIdx,
		); err != nil {
			return fmt.Errorf("storage: persist node %d: %w", trieIdx, err)
		}
	}
	return nil
}

func (s *SQLite) PersistLeaves(items []item.CachedItem, batchID uint64) error {
	for _, it := range items {
		keyBytes := it.Key.ToBEBytes()
		commitmentBytes := it.Commitment.ToBEBytes()
		if _, err := s.q.Exec(
			`INSERT INTO leaves (key, commitment, value, batch_id) VALUES (?, ?, ?, ?)`,
			keyBytes[:], commitmentBytes[:], it.Value, batchID,
		); err != nil {
			return fmt.Errorf("storage: persist leaf: %w", err)
		}
	}
	return nil
}

func (s *SQLite) GetNodeIdx() (uint64, error) {
	var maxIdx sql.NullInt64
	err := s.q.QueryRow(`SELECT MAX(trie_idx) FROM trie_nodes`).Scan(&maxIdx)
	if err != nil {
		return 0, fmt.Errorf("storage: get node idx: %w", err)
	}
	if !maxIdx.Valid {
		return 0, nil
	}
	return uint64(maxIdx.Int64), nil
}

func (s *SQLite) CreateBatch(b Batch) error {
	var parentID any
	if b.ParentID != nil {
		parentID = *b.ParentID
	}
	_, err := s.q.Exec(
		`INSERT INTO batches (id, parent_id, status, root_idx) VALUES (?, ?, ?, ?)`,
		b.ID, parentID, b.Status.String(), b.RootIdx,
	)
	if err != nil {
		return fmt.Errorf("storage: create batch %d: %w", b.ID, err)
	}
	return nil
}

func (s *SQLite) GetBatch(id uint64) (Batch, bool, error) {
	var parentID sql.NullInt64
	var statusStr string
	var rootIdx uint64
	err := s.q.QueryRow(
		`SELECT parent_id, status, root_idx FROM batches WHERE id = ?`, id,
	).Scan(&parentID, &statusStr, &rootIdx)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, false, nil
	}
	if err != nil {
		return Batch{}, false, fmt.Errorf("storage: get batch %d: %w", id, err)
	}
	return rowToBatch(id, parentID, statusStr, rootIdx)
}

func (s *SQLite) ListBatches() ([]Batch, error) {
	rows, err := s.q.Query(`SELECT id, parent_id, status, root_idx FROM batches ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage: list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var id, rootIdx uint64
		var parentID sql.NullInt64
		var statusStr string
		if err := rows.Scan(&id, &parentID, &statusStr, &rootIdx); err != nil {
			return nil, fmt.Errorf("storage: scan batch row: %w", err)
		}
		b, err := rowToBatch(id, parentID, statusStr, rootIdx)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (s *SQLite) Latest() (Batch, bool, error) {
	var id, rootIdx uint64
	var parentID sql.NullInt64
	var statusStr string
	err := s.q.QueryRow(
		`SELECT id, parent_id, status, root_idx FROM batches ORDER BY id DESC LIMIT 1`,
	).Scan(&id, &parentID, &statusStr, &rootIdx)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, false, nil
	}
	if err != nil {
		return Batch{}, false, fmt.Errorf("storage: latest batch: %w", err)
	}
	b, err := rowToBatch(id, parentID, statusStr, rootIdx)
	return b, true, err
}

func (s *SQLite) SetBatchStatus(id uint64, status BatchStatus) error {
	res, err := s.q.Exec(`UPDATE batches SET status = ? WHERE id = ?`, status.String(), id)
	if err != nil {
		return fmt.Errorf("storage: set batch %d status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: set batch %d status: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("storage: set batch %d status: no such batch", id)
	}
	return nil
}

// Transaction wraps fn in a single sqlite transaction; any error returned
// by fn rolls back every write it made (spec.md §5's cancellation contract).
func (s *SQLite) Transaction(fn func(Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin transaction: %w", err)
	}
	scoped := &SQLite{db: s.db, q: tx}
	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit transaction: %w", err)
	}
	return nil
}

func rowToBatch(id uint64, parentID sql.NullInt64, statusStr string, rootIdx uint64) (Batch, error) {
	status, ok := ParseBatchStatus(statusStr)
	if !ok {
		return Batch{}, fmt.Errorf("storage: invalid batch status %q for batch %d", statusStr, id)
	}
	b := Batch{ID: id, Status: status, RootIdx: rootIdx}
	if parentID.Valid {
		p := uint64(parentID.Int64)
		b.ParentID = &p
	}
	return b, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// StarTreeNode is a star node with its texts and children, as returned by
// StarTree.
type StarTreeNode struct {
	model.StarNode
	Texts    []model.StarText `json:"texts,omitempty"`
	Children []*StarTreeNode  `json:"children,omitempty"`
}

// StarRow is one flattened tree row: the node, its parent, and the
// type-path from the root.
type StarRow struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Path     string `json:"path"`
}

// CreateLang creates an annotation-tree root.
func (s *SQLiteStore) CreateLang(ctx context.Context, text string) (*model.Lang, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO langs (text, created_at, updated_at) VALUES (?, ?, ?)`, text, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert lang: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Lang{ID: id, Text: text, CreatedAt: ts, UpdatedAt: ts}, nil
}

// GetLang retrieves a lang by id.
func (s *SQLiteStore) GetLang(ctx context.Context, id int64) (*model.Lang, error) {
	var l model.Lang
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, created_at, updated_at FROM langs WHERE id = ?`, id).
		Scan(&l.ID, &l.Text, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("lang", id)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLangs returns all langs, ordered by text.
func (s *SQLiteStore) ListLangs(ctx context.Context) ([]model.Lang, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, created_at, updated_at FROM langs ORDER BY text ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Lang
	for rows.Next() {
		var l model.Lang
		if err := rows.Scan(&l.ID, &l.Text, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLang removes a lang with every node and text under it in one
// transaction.
func (s *SQLiteStore) DeleteLang(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM langs WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFound("lang", id)
	}
	if err != nil {
		return err
	}

	steps := []string{
		`DELETE FROM star_texts WHERE star_id IN (SELECT id FROM stars WHERE lang_id = ?)`,
		`DELETE FROM stars WHERE lang_id = ?`,
		`DELETE FROM langs WHERE id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete lang %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// CreateStarNode creates a tree node under a lang. A nil parent makes a
// root. The parent, when given, must exist and belong to the same lang;
// the cross-lang check is enforced here even though the schema cannot
// express it.
func (s *SQLiteStore) CreateStarNode(ctx context.Context, langID int64, parentStarID *int64, nodeType string) (*model.StarNode, error) {
	nodeType = strings.TrimSpace(nodeType)
	if nodeType == "" {
		return nil, fmt.Errorf("type is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM langs WHERE id = ?`, langID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, notFound("lang", langID)
	}
	if err != nil {
		return nil, err
	}

	if parentStarID != nil {
		var parentLangID int64
		err = tx.QueryRowContext(ctx,
			`SELECT lang_id FROM stars WHERE id = ?`, *parentStarID).Scan(&parentLangID)
		if err == sql.ErrNoRows {
			return nil, notFound("star", *parentStarID)
		}
		if err != nil {
			return nil, err
		}
		if parentLangID != langID {
			return nil, fmt.Errorf("star %d belongs to lang %d, not %d", *parentStarID, parentLangID, langID)
		}
	}

	ts := now()
	var parent interface{}
	if parentStarID != nil {
		parent = *parentStarID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO stars (lang_id, parent_star_id, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`, langID, parent, nodeType, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert star: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.StarNode{
		ID: id, LangID: langID, ParentStarID: parentStarID, Type: nodeType,
		CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// GetStarNode retrieves a star node by id.
func (s *SQLiteStore) GetStarNode(ctx context.Context, id int64) (*model.StarNode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lang_id, parent_star_id, type, created_at, updated_at FROM stars WHERE id = ?`, id)
	n, err := scanStarNode(row)
	if err == sql.ErrNoRows {
		return nil, notFound("star", id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AddStarText attaches a free-text entry to a node. A node may hold any
// number of texts.
func (s *SQLiteStore) AddStarText(ctx context.Context, starID int64, text string) (*model.StarText, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	if _, err := s.GetStarNode(ctx, starID); err != nil {
		return nil, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO star_texts (star_id, text, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		starID, text, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert star text: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.StarText{ID: id, StarID: starID, Text: text, CreatedAt: ts, UpdatedAt: ts}, nil
}

// DeleteStarText removes one text entry.
func (s *SQLiteStore) DeleteStarText(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM star_texts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("star_text", id)
	}
	return nil
}

// DeleteStarNode removes a node, its entire descendant subtree, and every
// text attached to any node in it. Descendant ids are collected first,
// then deleted children-before-parents inside one transaction, so a
// partial cascade is never observable.
func (s *SQLiteStore) DeleteStarNode(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM stars WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFound("star", id)
	}
	if err != nil {
		return err
	}

	ids, err := collectSubtreeTx(ctx, tx, id)
	if err != nil {
		return err
	}

	for i := len(ids) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, `DELETE FROM star_texts WHERE star_id = ?`, ids[i]); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM stars WHERE id = ?`, ids[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MoveStarNode re-parents a node. A nil new parent makes it a root. The
// move is rejected when the new parent is missing, belongs to another
// lang, or sits inside the node's own subtree (which would create a
// cycle).
func (s *SQLiteStore) MoveStarNode(ctx context.Context, nodeID int64, newParentID *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var langID int64
	err = tx.QueryRowContext(ctx, `SELECT lang_id FROM stars WHERE id = ?`, nodeID).Scan(&langID)
	if err == sql.ErrNoRows {
		return notFound("star", nodeID)
	}
	if err != nil {
		return err
	}

	var parent interface{}
	if newParentID != nil {
		if *newParentID == nodeID {
			return fmt.Errorf("cannot move star %d under itself", nodeID)
		}
		var parentLangID int64
		err = tx.QueryRowContext(ctx,
			`SELECT lang_id FROM stars WHERE id = ?`, *newParentID).Scan(&parentLangID)
		if err == sql.ErrNoRows {
			return notFound("star", *newParentID)
		}
		if err != nil {
			return err
		}
		if parentLangID != langID {
			return fmt.Errorf("star %d belongs to lang %d, not %d", *newParentID, parentLangID, langID)
		}

		subtree, err := collectSubtreeTx(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		for _, sid := range subtree {
			if sid == *newParentID {
				return fmt.Errorf("invalid move: star %d is inside the subtree of star %d", *newParentID, nodeID)
			}
		}
		parent = *newParentID
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE stars SET parent_star_id = ?, updated_at = ? WHERE id = ?`,
		parent, now(), nodeID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// StarTree returns a lang's full tree with texts. Nodes are assembled in
// an id-keyed arena with a separate parent-to-children index, so the
// result holds no back-pointers.
func (s *SQLiteStore) StarTree(ctx context.Context, langID int64) ([]*StarTreeNode, error) {
	if _, err := s.GetLang(ctx, langID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lang_id, parent_star_id, type, created_at, updated_at
		 FROM stars WHERE lang_id = ? ORDER BY id ASC`, langID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	arena := map[int64]*StarTreeNode{}
	var order []int64
	for rows.Next() {
		n, err := scanStarNode(rows)
		if err != nil {
			return nil, err
		}
		arena[n.ID] = &StarTreeNode{StarNode: n}
		order = append(order, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.star_id, t.text, t.created_at, t.updated_at
		FROM star_texts t
		JOIN stars st ON st.id = t.star_id
		WHERE st.lang_id = ?
		ORDER BY t.id ASC`, langID)
	if err != nil {
		return nil, err
	}
	defer trows.Close()

	for trows.Next() {
		var t model.StarText
		if err := trows.Scan(&t.ID, &t.StarID, &t.Text, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if node, ok := arena[t.StarID]; ok {
			node.Texts = append(node.Texts, t)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	var roots []*StarTreeNode
	for _, id := range order {
		node := arena[id]
		if node.ParentStarID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := arena[*node.ParentStarID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Orphaned parent reference; surface the node as a root
			// rather than dropping it.
			roots = append(roots, node)
		}
	}
	return roots, nil
}

// FlattenStars returns the lang's tree as rows with the type-path from
// the root, depth first.
func (s *SQLiteStore) FlattenStars(ctx context.Context, langID int64) ([]StarRow, error) {
	roots, err := s.StarTree(ctx, langID)
	if err != nil {
		return nil, err
	}

	var out []StarRow
	var walk func(n *StarTreeNode, path []string)
	walk = func(n *StarTreeNode, path []string) {
		current := append(append([]string{}, path...), n.Type)
		out = append(out, StarRow{
			ID:       n.ID,
			Type:     n.Type,
			ParentID: n.ParentStarID,
			Path:     strings.Join(current, " > "),
		})
		for _, c := range n.Children {
			walk(c, current)
		}
	}
	for _, r := range roots {
		walk(r, nil)
	}
	return out, nil
}

// collectSubtreeTx returns the ids of a node and all its descendants in
// breadth-first order.
func collectSubtreeTx(ctx context.Context, tx *sql.Tx, rootID int64) ([]int64, error) {
	ids := []int64{rootID}
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var next []int64
		for _, parent := range frontier {
			rows, err := tx.QueryContext(ctx,
				`SELECT id FROM stars WHERE parent_star_id = ? ORDER BY id ASC`, parent)
			if err != nil {
				return nil, err
			}
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					return nil, err
				}
				next = append(next, id)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, err
			}
			rows.Close()
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

func scanStarNode(row scanner) (model.StarNode, error) {
	var n model.StarNode
	var parent sql.NullInt64
	err := row.Scan(&n.ID, &n.LangID, &parent, &n.Type, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	if parent.Valid {
		n.ParentStarID = &parent.Int64
	}
	return n, nil
}

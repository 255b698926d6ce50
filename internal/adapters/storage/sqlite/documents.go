package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

// docColumns: tabla => columna JSON. Es la única fuente de nombres para el SQL dinámico.
var docColumns = map[document.Table]string{
	document.TableOwners:       "contact",
	document.TablePets:         "medical",
	document.TableAppointments: "consultation",
}

type docStore struct {
	db *sql.DB
}

func docColumn(t document.Table) (string, error) {
	if err := document.CheckTable(t); err != nil {
		return "", err
	}
	return docColumns[t], nil
}

func (d *docStore) Get(ctx context.Context, table document.Table, id string) (document.Document, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	return getDoc(ctx, d.db, table, col, id)
}

func getDoc(ctx context.Context, q queryer, table document.Table, col, id string) (document.Document, error) {
	var doc document.Document
	err := q.QueryRowContext(ctx, `SELECT `+col+` FROM `+string(table)+` WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(string(table), id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *docStore) Set(ctx context.Context, table document.Table, id string, doc document.Document) error {
	col, err := docColumn(table)
	if err != nil {
		return err
	}
	doc, err = document.Normalize(doc)
	if err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx, `UPDATE `+string(table)+` SET `+col+` = ? WHERE id = ?`, doc, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(string(table), id)
	}
	return nil
}

func (d *docStore) Merge(ctx context.Context, table document.Table, id string, patch document.Document) (document.Document, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	patch, err = document.Normalize(patch)
	if err != nil {
		return nil, err
	}

	var merged document.Document
	err = withTx(ctx, d.db, func(tx *sql.Tx) error {
		current, err := getDoc(ctx, tx, table, col, id)
		if err != nil {
			return err
		}
		merged = current.Merge(patch)
		_, err = tx.ExecContext(ctx, `UPDATE `+string(table)+` SET `+col+` = ? WHERE id = ?`, merged, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (d *docStore) QueryByKeyExists(ctx context.Context, table document.Table, key string) ([]string, error) {
	return d.query(ctx, table, document.Filter{Key: key})
}

func (d *docStore) QueryByKeyEquals(ctx context.Context, table document.Table, key string, value any) ([]string, error) {
	return d.query(ctx, table, document.Filter{Key: key, Value: value, MatchValue: true})
}

// query preselecciona con json_each por key y compara el valor en Go
// (la igualdad tiene semántica JSON: 1 == 1.0, null es un valor).
func (d *docStore) query(ctx context.Context, table document.Table, f document.Filter) ([]string, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	if err := document.CheckKey(f.Key); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.id, t.`+col+` FROM `+string(table)+` t
		WHERE EXISTS (SELECT 1 FROM json_each(t.`+col+`) j WHERE j.key = ?)
		ORDER BY t.rowid
	`, f.Key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var (
			id  string
			doc document.Document
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		if f.Matches(doc) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

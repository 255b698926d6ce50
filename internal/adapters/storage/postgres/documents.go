package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

// docColumns: tabla => columna JSONB. Es la única fuente de nombres para el SQL dinámico.
var docColumns = map[document.Table]string{
	document.TableOwners:       "contact",
	document.TablePets:         "medical",
	document.TableAppointments: "consultation",
}

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func docColumn(t document.Table) (string, error) {
	if err := document.CheckTable(t); err != nil {
		return "", err
	}
	return docColumns[t], nil
}

func (d *DocumentStore) Get(ctx context.Context, table document.Table, id string) (document.Document, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}

	var doc document.Document
	err = d.db.QueryRowContext(ctx, `SELECT `+col+` FROM `+string(table)+` WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(string(table), id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *DocumentStore) Set(ctx context.Context, table document.Table, id string, doc document.Document) error {
	col, err := docColumn(table)
	if err != nil {
		return err
	}
	doc, err = document.Normalize(doc)
	if err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx, `UPDATE `+string(table)+` SET `+col+` = $2 WHERE id = $1`, id, doc)
	if err != nil {
		return err
	}
	return rowsAffected(res, string(table), id)
}

// Merge usa el operador || de jsonb, que es justamente un merge superficial,
// en una única sentencia.
func (d *DocumentStore) Merge(ctx context.Context, table document.Table, id string, patch document.Document) (document.Document, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	patch, err = document.Normalize(patch)
	if err != nil {
		return nil, err
	}

	var merged document.Document
	err = d.db.QueryRowContext(ctx, `
		UPDATE `+string(table)+`
		SET `+col+` = `+col+` || $2::jsonb
		WHERE id = $1
		RETURNING `+col,
		id, patch,
	).Scan(&merged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(string(table), id)
	}
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (d *DocumentStore) QueryByKeyExists(ctx context.Context, table document.Table, key string) ([]string, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	if err := document.CheckKey(key); err != nil {
		return nil, err
	}

	return d.queryIDs(ctx, `
		SELECT id FROM `+string(table)+`
		WHERE `+col+` ? $1
		ORDER BY seq
	`, key)
}

// QueryByKeyEquals usa @> para aprovechar el índice GIN y luego compara exacto
// (para listas @> es "contiene", no "igual").
func (d *DocumentStore) QueryByKeyEquals(ctx context.Context, table document.Table, key string, value any) ([]string, error) {
	col, err := docColumn(table)
	if err != nil {
		return nil, err
	}
	if err := document.CheckKey(key); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, apperr.Validation("query value is not JSON-like: %v", err)
	}

	return d.queryIDs(ctx, `
		SELECT id FROM `+string(table)+`
		WHERE `+col+` @> jsonb_build_object($1::text, $2::jsonb)
		  AND `+col+` -> $1 = $2::jsonb
		ORDER BY seq
	`, key, string(raw))
}

func (d *DocumentStore) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

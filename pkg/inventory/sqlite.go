package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS objects (
		type  TEXT NOT NULL,
		ref   TEXT NOT NULL,
		attrs TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (type, ref)
	);
	CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);
	`

func openSQLite(path string, readOnly bool) (*sql.DB, error) {
	pragmas := url.Values{"_pragma": []string{"busy_timeout(5000)"}}
	if readOnly {
		pragmas.Add("mode", "ro")
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+pragmas.Encode())
	if err != nil {
		return nil, fmt.Errorf("open inventory db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// LoadSQLite reads the objects table of a SQLite inventory. The attrs column
// holds a JSON object.
func LoadSQLite(path string) ([]model.Object, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openSQLite(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(context.Background(), `SELECT type, ref, attrs FROM objects ORDER BY type, ref`)
	if err != nil {
		return nil, fmt.Errorf("query inventory %s: %w", path, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var typ, attrs string
		if err := rows.Scan(&typ, &r.Ref, &attrs); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		r.Type = model.ObjectType(typ)
		if attrs != "" {
			if err := json.Unmarshal([]byte(attrs), &r.Attrs); err != nil {
				return nil, fmt.Errorf("inventory %s: %s:%s attrs: %w", path, typ, r.Ref, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}
	return decodeRecords(path, records)
}

// WriteSQLite replaces the contents of a SQLite inventory with objs.
func WriteSQLite(path string, objs []model.Object) error {
	db, err := openSQLite(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init inventory schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin inventory write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO objects (type, ref, attrs) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare inventory insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range sortedRecords(objs) {
		attrs := []byte("{}")
		if len(r.Attrs) > 0 {
			if attrs, err = json.Marshal(r.Attrs); err != nil {
				return fmt.Errorf("marshal %s:%s attrs: %w", r.Type, r.Ref, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, string(r.Type), r.Ref, string(attrs)); err != nil {
			return fmt.Errorf("insert %s:%s: %w", r.Type, r.Ref, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit inventory: %w", err)
	}
	return nil
}

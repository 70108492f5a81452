package litemigrate

import "context"

// fakeConn scripts FetchAll responses and records every executed statement,
// standing in for the engine in unit tests.
type fakeConn struct {
	fetch  func(sqlText string) ([]map[string]any, error)
	execed []string
	tx     []string
}

func (f *fakeConn) Exec(ctx context.Context, sqlText string) error {
	f.execed = append(f.execed, sqlText)
	return nil
}

func (f *fakeConn) FetchAll(ctx context.Context, sqlText string) ([]map[string]any, error) {
	if f.fetch == nil {
		return nil, nil
	}
	return f.fetch(sqlText)
}

func (f *fakeConn) BeginTransaction(ctx context.Context) error {
	f.tx = append(f.tx, "begin")
	return nil
}

func (f *fakeConn) Commit() error {
	f.tx = append(f.tx, "commit")
	return nil
}

func (f *fakeConn) Rollback() error {
	f.tx = append(f.tx, "rollback")
	return nil
}

func tableInfoRow(cid int, name, typ string, notNull int, dflt *string, pk int) map[string]any {
	var dv any
	if dflt != nil {
		dv = *dflt
	}
	return map[string]any{
		"cid":        int64(cid),
		"name":       name,
		"type":       typ,
		"notnull":    int64(notNull),
		"dflt_value": dv,
		"pk":         int64(pk),
	}
}

func indexListRow(seq int, name string, unique int, origin string) map[string]any {
	return map[string]any{
		"seq":     int64(seq),
		"name":    name,
		"unique":  int64(unique),
		"origin":  origin,
		"partial": int64(0),
	}
}

func indexInfoRow(seqno, cid int, name string) map[string]any {
	return map[string]any{"seqno": int64(seqno), "cid": int64(cid), "name": name}
}

func fkListRow(id, seq int, table, from, to string) map[string]any {
	return map[string]any{
		"id":        int64(id),
		"seq":       int64(seq),
		"table":     table,
		"from":      from,
		"to":        to,
		"on_update": "NO ACTION",
		"on_delete": "NO ACTION",
		"match":     "NONE",
	}
}

func databaseListRows(names ...string) []map[string]any {
	rows := make([]map[string]any, len(names))
	for i, n := range names {
		rows[i] = map[string]any{"seq": int64(i), "name": n, "file": ""}
	}
	return rows
}

func strPtr(s string) *string { return &s }

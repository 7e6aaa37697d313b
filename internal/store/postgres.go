package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-admin/internal/logger"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type postgresGateway struct {
	db     querier
	logger *zerolog.Logger
}

// NewPostgres returns a Gateway backed by a pgx pool.
func NewPostgres(pool *pgxpool.Pool, log *zerolog.Logger) Gateway {
	return &postgresGateway{db: pool, logger: logger.OrNop(log)}
}

func (g *postgresGateway) Select(ctx context.Context, table string, filter Filter, order ...Order) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkFilter(table, filter); err != nil {
		return nil, err
	}
	if err := checkOrder(table, order); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(ident(table))
	where, args := buildWhere(filter, 0)
	sb.WriteString(where)
	if len(order) > 0 {
		parts := make([]string, 0, len(order))
		for _, o := range order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, ident(o.Column)+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	rows, err := g.query(ctx, sb.String(), args...)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Msg("store: select failed")
		return nil, err
	}
	g.logger.Debug().Str("table", table).Int("count", len(rows)).Msg("store: select")
	return rows, nil
}

// Insert writes all rows in one statement, so a batch either lands whole or not at all.
func (g *postgresGateway) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := sortedColumns(rows[0])
	if len(cols) == 0 {
		return nil, fmt.Errorf("insert into %s: empty row", table)
	}
	for _, r := range rows {
		if err := checkRow(table, r); err != nil {
			return nil, err
		}
		if len(r) != len(cols) {
			return nil, fmt.Errorf("insert into %s: rows have different columns", table)
		}
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}
	args := make([]any, 0, len(rows)*len(cols))
	tuples := make([]string, 0, len(rows))
	for _, r := range rows {
		ph := make([]string, len(cols))
		for i, c := range cols {
			v, ok := r[c]
			if !ok {
				return nil, fmt.Errorf("insert into %s: row missing column %s", table, c)
			}
			args = append(args, v)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		tuples = append(tuples, "("+strings.Join(ph, ", ")+")")
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s RETURNING *",
		ident(table), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
	out, err := g.query(ctx, q, args...)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Int("rows", len(rows)).Msg("store: insert failed")
		return nil, err
	}
	g.logger.Debug().Str("table", table).Int("rows", len(out)).Msg("store: insert")
	return out, nil
}

func (g *postgresGateway) Update(ctx context.Context, table string, patch Row, filter Filter) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("update %s: empty patch", table)
	}
	if err := checkRow(table, patch); err != nil {
		return nil, err
	}
	if err := checkFilter(table, filter); err != nil {
		return nil, err
	}

	cols := sortedColumns(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		args = append(args, patch[c])
		sets[i] = fmt.Sprintf("%s = $%d", ident(c), len(args))
	}
	where, whereArgs := buildWhere(filter, len(args))
	args = append(args, whereArgs...)

	q := fmt.Sprintf("UPDATE %s SET %s%s RETURNING *", ident(table), strings.Join(sets, ", "), where)
	out, err := g.query(ctx, q, args...)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Msg("store: update failed")
		return nil, err
	}
	return out, nil
}

func (g *postgresGateway) Delete(ctx context.Context, table string, filter Filter) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(filter) == 0 {
		return fmt.Errorf("delete from %s: refusing to delete without a filter", table)
	}
	if err := checkFilter(table, filter); err != nil {
		return err
	}
	where, args := buildWhere(filter, 0)
	tag, err := g.db.Exec(ctx, "DELETE FROM "+ident(table)+where, args...)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Msg("store: delete failed")
		return mapPgError(err)
	}
	g.logger.Debug().Str("table", table).Int64("rows", tag.RowsAffected()).Msg("store: delete")
	return nil
}

func (g *postgresGateway) query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := g.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

func buildWhere(filter Filter, offset int) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for _, c := range filter {
		switch c.Op {
		case OpIn:
			args = append(args, c.Value)
			parts = append(parts, fmt.Sprintf("%s = ANY($%d)", ident(c.Column), offset+len(args)))
		default:
			if c.Value == nil {
				parts = append(parts, ident(c.Column)+" IS NULL")
				continue
			}
			args = append(args, c.Value)
			parts = append(parts, fmt.Sprintf("%s = $%d", ident(c.Column), offset+len(args)))
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// normalize converts pgx driver values into the types Row accessors expect.
func normalize(v any) any {
	switch n := v.(type) {
	case pgtype.Numeric:
		if !n.Valid || n.NaN || n.Int == nil {
			return nil
		}
		return decimal.NewFromBigInt(n.Int, n.Exp)
	}
	return v
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

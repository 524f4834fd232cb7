package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"example.com/userstore/internal/domain"
	"example.com/userstore/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite3"
)

var schema = map[string]string{
	DriverPgx: `
		create table if not exists users (
			id   bigserial primary key,
			name text
		)`,
	DriverSQLite: `
		create table if not exists users (
			id   integer primary key autoincrement,
			name text
		)`,
}

// Store is a database/sql backed user collection. Queries are written with
// "?" placeholders and rebound for drivers that use numbered ones.
type Store struct {
	db     *sql.DB
	driver string
}

func New(driver, dsn string) (*Store, error) {
	if _, ok := schema[driver]; !ok {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("db dsn is empty")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and writes serialized
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the users table. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema[s.driver]); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed inserts users with their own ids. Rows whose id already exists are
// skipped; the returned error wraps storage.ErrConflict in that case so the
// caller can decide whether to log or fail.
func (s *Store) Seed(ctx context.Context, users []domain.User) error {
	var skipped []string
	for _, u := range users {
		_, err := s.db.ExecContext(ctx, s.rebind(`insert into users(id, name) values (?, ?)`), u.ID, nullString(u.Name))
		if err != nil {
			if isUniqueViolation(err) {
				skipped = append(skipped, strconv.FormatInt(u.ID, 10))
				continue
			}
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	if s.driver == DriverPgx {
		_, err := s.db.ExecContext(ctx, `
			select setval(pg_get_serial_sequence('users', 'id'), coalesce(max(id), 0) + 1, false)
			from users`,
		)
		if err != nil {
			return fmt.Errorf("reset id sequence: %w", err)
		}
	}
	if len(skipped) > 0 {
		return fmt.Errorf("%w: duplicate seed ids %s", storage.ErrConflict, strings.Join(skipped, ","))
	}
	return nil
}

// ListUsers orders by id. Seeds with descending ids therefore list
// differently than in the memory store, which keeps insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name
		from users
		order by id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		select id, name
		from users
		where id = ?`),
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, name *string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		insert into users(name)
		values (?)
		returning id`),
		nullString(name),
	)
	u := domain.User{Name: name}.Clone()
	if err := row.Scan(&u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, name *string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		update users
		set name = ?
		where id = ?
		returning id, name`),
		nullString(name),
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`delete from users where id = ?`), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (domain.User, error) {
	var u domain.User
	var name sql.NullString
	if err := sc.Scan(&u.ID, &name); err != nil {
		return domain.User{}, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	return u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// rebind turns "?" placeholders into "$1", "$2", ... for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPgx {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationsFS はサービスごとのマイグレーションを保持する。
// migrations/<service>/ 配下にそのサービスが所有するテーブルのDDLを置く。
//
//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// NewMigrator は指定サービスのマイグレーション実行用のmigrateインスタンスを生成する。
// 3サービスが同一DBを共有しても履歴が衝突しないよう、
// 履歴テーブルは schema_migrations_<service> に分ける。
func NewMigrator(databaseURL, service string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+service)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source for %q: %w", service, err)
	}

	dbURL, err := withMigrationsTable(databaseURL, "schema_migrations_"+service)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations は指定サービスのすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(databaseURL, service string) error {
	m, err := NewMigrator(databaseURL, service)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// withMigrationsTable はデータベースURLに x-migrations-table パラメータを付与する。
func withMigrationsTable(databaseURL, table string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	q := u.Query()
	q.Set("x-migrations-table", table)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

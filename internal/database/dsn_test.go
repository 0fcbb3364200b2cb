package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "catalog",
		Password: "secret",
		Name:     "kgcatalog",
		Host:     "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.example.com port=5433 user=catalog dbname=kgcatalog password=secret sslmode=disable", dsn)

	_, err = buildPostgresDSN(Config{Name: "kgcatalog"})
	require.Error(t, err)
}

func TestBuildPostgresDSNRespectsOverride(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://u:p@host/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@host/db", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "catalog",
		Password: "secret",
		Name:     "kgcatalog",
	})
	require.NoError(t, err)
	require.Equal(t, "catalog:secret@tcp(127.0.0.1:3306)/kgcatalog?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

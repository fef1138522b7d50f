package store

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

func ptr[T any](v T) *T { return &v }

// serveRemote exposes backend over an in-memory grpc listener.
func serveRemote(t *testing.T, backend Store) *Remote {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterService(srv, backend)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRemote(conn)
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"file": func(t *testing.T) Store {
			t.Setenv(config.HomeEnv, t.TempDir())
			return NewFile()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "kindling.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"remote": func(t *testing.T) Store { return serveRemote(t, NewMemory()) },
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			a, err := s.Create(ctx, CreateOptions{Name: "Landing", Description: "demo", OwnerID: "u1"})
			require.NoError(t, err)
			require.NotEmpty(t, a.ProjectID)
			assert.Equal(t, "u1", a.OwnerID)
			assert.Empty(t, a.Code)

			b, err := s.Create(ctx, CreateOptions{Name: "Second", OwnerID: "u1"})
			require.NoError(t, err)
			assert.NotEqual(t, a.ProjectID, b.ProjectID)

			updated, err := s.Update(ctx, a.ProjectID, CodeUpdate("<h1>hi</h1>"))
			require.NoError(t, err)
			assert.Equal(t, "<h1>hi</h1>", updated.Code)
			assert.Equal(t, "Landing", updated.Name)
			assert.Equal(t, "demo", updated.Description)

			renamed, err := s.Update(ctx, a.ProjectID, UpdateOptions{Name: ptr("Renamed")})
			require.NoError(t, err)
			assert.Equal(t, "<h1>hi</h1>", renamed.Code)

			got, err := s.Get(ctx, a.ProjectID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, "<h1>hi</h1>", got.Code)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			ids := []string{list[0].ProjectID, list[1].ProjectID}
			assert.ElementsMatch(t, []string{a.ProjectID, b.ProjectID}, ids)

			require.NoError(t, s.Delete(ctx, b.ProjectID))
			list, err = s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStoreErrors(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			var se *StoreError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "get", se.Op)

			_, err = s.Update(ctx, "missing", CodeUpdate("x"))
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)

			_, err = s.Create(ctx, CreateOptions{Name: "  "})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRemoteUnavailable(t *testing.T) {
	lis := bufconn.Listen(1024)
	require.NoError(t, lis.Close())

	r, err := Dial("passthrough:///closed", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFileStoreSkipsMissingProjectFiles(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	require.NoError(t, config.RegisterProject("ghost", "Ghost"))

	s := NewFile()
	p, err := s.Create(context.Background(), CreateOptions{Name: "Real"})
	require.NoError(t, err)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ProjectID, list[0].ProjectID)
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())

	tests := []struct {
		backend string
		want    any
	}{
		{models.StoreBackendFile, &File{}},
		{"", &File{}},
		{models.StoreBackendMemory, &Memory{}},
		{models.StoreBackendSQLite, &SQLite{}},
	}
	for _, tt := range tests {
		s := models.NewSettings()
		s.Store.Backend = tt.backend
		st, err := Open(s)
		require.NoError(t, err, tt.backend)
		assert.IsType(t, tt.want, st, tt.backend)
		require.NoError(t, st.Close())
	}

	s := models.NewSettings()
	s.Store.Backend = "carrier-pigeon"
	_, err := Open(s)
	assert.Error(t, err)

	s.Store.Backend = models.StoreBackendRemote
	_, err = Open(s)
	assert.ErrorIs(t, err, ErrUnavailable)
}

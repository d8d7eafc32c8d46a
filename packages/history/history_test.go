package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", FileName), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func response(status int, at time.Time) *model.HttpResponse {
	return &model.HttpResponse{
		Status:     status,
		StatusText: "OK",
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       `{"ok":true}`,
		Time:       120 * time.Millisecond,
		Size:       11,
		Timestamp:  at,
	}
}

func TestAdd_RecordsServerResponses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.UnixMilli(1767323045000)

	req := &model.Request{
		Name:    "Get users",
		Method:  model.MethodGet,
		URL:     "https://api.example.com/users",
		Headers: []model.KeyValue{{Key: "Accept", Value: "application/json", Enabled: true}},
		Auth:    &model.BearerAuth{Token: "t"},
	}

	ok, err := s.Add(ctx, req, response(200, at))
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.True(t, at.Equal(e.Timestamp))
	assert.Equal(t, "Get users", e.Request.Name)
	assert.Equal(t, req.Headers, e.Request.Headers)
	assert.Equal(t, &model.BearerAuth{Token: "t"}, e.Request.Auth)
	assert.Equal(t, 200, e.Response.Status)
	assert.Equal(t, `{"ok":true}`, e.Response.Body)
	assert.Equal(t, 120*time.Millisecond, e.Response.Time)
}

func TestAdd_SkipsStatusZero(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Add(ctx, &model.Request{URL: "https://nope.invalid"}, &model.HttpResponse{
		Status:     0,
		StatusText: model.StatusTextError,
		Failure:    model.FailureHostResolution,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Add(ctx, nil, response(200, time.Now()))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAdd_PrunesToLimit(t *testing.T) {
	s := openTestStore(t, WithLimit(3))
	ctx := context.Background()
	base := time.UnixMilli(1767323045000)

	for i := 0; i < 5; i++ {
		req := &model.Request{Name: fmt.Sprintf("req-%d", i), URL: "https://h"}
		_, err := s.Add(ctx, req, response(200, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Request.Name)
	}
	assert.Equal(t, []string{"req-4", "req-3", "req-2"}, names)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAdd_UsesClockWhenTimestampMissing(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	s := openTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.Add(ctx, &model.Request{URL: "https://h"}, response(204, time.Time{}))
	require.NoError(t, err)

	entries, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, now.Equal(entries[0].Timestamp))
	assert.Equal(t, model.MethodGet, entries[0].Request.Method)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, &model.Request{URL: "https://h"}, response(200, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(ctx, &model.Request{URL: "https://h"}, response(200, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

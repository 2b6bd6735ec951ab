package postgres

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
)

func TestWriteLargeObject_SingleChunk(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := []byte("tiny png")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT lo_from_bytea").WithArgs(payload).
		WillReturnRows(pgxmock.NewRows([]string{"lo_from_bytea"}).AddRow(uint32(501)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	oid, size, err := writeLargeObject(context.Background(), tx, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, uint32(501), oid)
	assert.Equal(t, int64(len(payload)), size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteLargeObject_MultipleChunks(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := bytes.Repeat([]byte{0xAB}, chunkSize+10)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT lo_from_bytea").WithArgs(payload[:chunkSize]).
		WillReturnRows(pgxmock.NewRows([]string{"lo_from_bytea"}).AddRow(uint32(77)))
	mock.ExpectExec("SELECT lo_put").WithArgs(uint32(77), int64(chunkSize), payload[chunkSize:]).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	oid, size, err := writeLargeObject(context.Background(), tx, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, uint32(77), oid)
	assert.Equal(t, int64(len(payload)), size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteLargeObject_ExactChunkBoundary(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := bytes.Repeat([]byte{1}, chunkSize)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT lo_from_bytea").WithArgs(payload).
		WillReturnRows(pgxmock.NewRows([]string{"lo_from_bytea"}).AddRow(uint32(8)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, size, err := writeLargeObject(context.Background(), tx, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(chunkSize), size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestWriteLargeObject_ReadError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, _, err = writeLargeObject(context.Background(), tx, failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")
}

func TestLargeObjectReader_StreamsChunksAndCommits(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	first := bytes.Repeat([]byte{'a'}, chunkSize)
	second := []byte("tail")
	size := int64(len(first) + len(second))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT lo_get").WithArgs(uint32(9), int64(0), int32(chunkSize)).
		WillReturnRows(pgxmock.NewRows([]string{"lo_get"}).AddRow(first))
	mock.ExpectQuery("SELECT lo_get").WithArgs(uint32(9), int64(chunkSize), int32(len(second))).
		WillReturnRows(pgxmock.NewRows([]string{"lo_get"}).AddRow(second))
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	r := newLargeObjectReader(context.Background(), tx, 9, size)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), got)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "second close is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLargeObjectReader_QueryError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT lo_get").WillReturnError(errors.New("large object 9 does not exist"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = io.ReadAll(newLargeObjectReader(context.Background(), tx, 9, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read large object 9")
}

// cmd/quiz-server/main_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"fragrance-finder/internal/common/camunda"
	"fragrance-finder/internal/common/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) camunda.RetryConfig {
	return camunda.RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestWaitForStore_RetriesPingOnSamePool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	pg := &database.PostgresClient{DB: db}
	require.NoError(t, waitForStore(context.Background(), pg, fastRetry(5), "postgres connection"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForStore_GivesUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for i := 0; i < 3; i++ { // first attempt plus two retries
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	pg := &database.PostgresClient{DB: db}
	err = waitForStore(context.Background(), pg, fastRetry(2), "postgres connection")

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

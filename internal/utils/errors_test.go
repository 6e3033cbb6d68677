package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := WrapDiscoveryError("migrations", cause)

	assert.Equal(t, "failed to read migrations directory 'migrations': permission denied", err.Error())
	assert.True(t, errors.Is(err, ErrDiscovery))
	assert.True(t, IsDiscoveryError(err))
	assert.False(t, IsHistoryError(err))
}

func TestConnectionError(t *testing.T) {
	t.Run("With target", func(t *testing.T) {
		err := WrapConnectionError("app.db", fmt.Errorf("file locked"))

		assert.Equal(t, "cannot connect to database 'app.db': file locked", err.Error())
		assert.True(t, errors.Is(err, ErrConnection))
	})

	t.Run("Without target", func(t *testing.T) {
		err := WrapConnectionError("", fmt.Errorf("refused"))

		assert.Equal(t, "cannot connect to database: refused", err.Error())
		assert.True(t, IsConnectionError(err))
	})
}

func TestTransactionError(t *testing.T) {
	err := WrapTransactionError("commit", fmt.Errorf("disk full"))

	assert.Equal(t, "transaction commit failed: disk full", err.Error())
	assert.True(t, errors.Is(err, ErrTransaction))
	assert.True(t, IsTransactionError(err))
}

func TestSchemaError(t *testing.T) {
	err := WrapSchemaError("migrations", fmt.Errorf("readonly database"))

	assert.Equal(t, "could not ensure table 'migrations': readonly database", err.Error())
	assert.True(t, errors.Is(err, ErrSchema))
	assert.True(t, IsSchemaError(err))
}

func TestExecutionError(t *testing.T) {
	err := WrapExecutionError("0002_broken.sql", "migrations/0002_broken.sql", fmt.Errorf("syntax error"))

	assert.Equal(t, "migration '0002_broken.sql' failed: syntax error", err.Error())
	assert.True(t, errors.Is(err, ErrExecution))
	assert.True(t, IsExecutionError(err))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, "migrations/0002_broken.sql", execErr.Path)
}

func TestHistoryError(t *testing.T) {
	err := WrapHistoryError("insert", fmt.Errorf("no such table"))

	assert.Equal(t, "history insert failed: no such table", err.Error())
	assert.True(t, errors.Is(err, ErrHistory))
	assert.True(t, IsHistoryError(err))
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrDiscovery, ErrConnection, ErrTransaction, ErrSchema, ErrExecution, ErrHistory}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

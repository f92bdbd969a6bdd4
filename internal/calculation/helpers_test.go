package calculation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/ratetable"
)

func table2024(t *testing.T) *domain.RateTable {
	t.Helper()
	store, err := ratetable.Default()
	require.NoError(t, err)
	rt, err := store.Table(2024)
	require.NoError(t, err)
	return rt
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
)

func requireAPIError(t *testing.T, err error) *apperr.APIError {
	t.Helper()
	var apiErr *apperr.APIError
	require.True(t, errors.As(err, &apiErr), "expected *apperr.APIError, got %T: %v", err, err)
	return apiErr
}

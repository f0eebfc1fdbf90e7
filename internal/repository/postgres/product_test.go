package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProductRepository(t *testing.T) {
	db := &Connection{}
	repo := NewProductRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestProductRepository_Structure(t *testing.T) {
	repo := &ProductRepository{
		db: nil,
	}

	assert.NotNil(t, repo)
	assert.Nil(t, repo.db)
}

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFormatSAR(t *testing.T) {
	assert.Equal(t, "0 ر.س", FormatSAR(0))
	assert.Equal(t, "12.50 ر.س", FormatSAR(1250))
	assert.Equal(t, "1,250,000 ر.س", FormatSAR(125000000))
	assert.Equal(t, "-3.05 ر.س", FormatSAR(-305))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound, ErrProjectNotFound, "get"), ErrProjectNotFound)
	boom := errors.New("boom")
	err := notFound(boom, ErrProjectNotFound, "get project")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrProjectNotFound)
	assert.Equal(t, "get project: boom", err.Error())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 100, clampLimit(500, 20, 100))
	assert.Equal(t, 7, clampLimit(7, 20, 100))
}

package itf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDBName(t *testing.T) {
	assert.Equal(t, "testpostgresstore_greatest", sanitizeDBName("TestPostgresStore/Greatest"))
	assert.Equal(t, "test_db", sanitizeDBName("///"))
	assert.Equal(t, "t_1abc", sanitizeDBName("1abc"))

	long := "Test" + strings.Repeat("VeryLongSubtestName/", 10)
	got := sanitizeDBName(long)
	assert.LessOrEqual(t, len(got), maxDBNameLength)
	assert.Equal(t, got, sanitizeDBName(long))
	assert.NotEqual(t, got, sanitizeDBName(long+"x"))
}

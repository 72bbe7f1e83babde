package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCommonDefaults(t *testing.T) {
	c := LoadCommon()
	assert.Equal(t, "localhost:19092", c.KafkaBrokers)
	assert.Equal(t, "redis://localhost:6379", c.RedisURL)
	assert.Equal(t, "info", c.LogLevel)
}

func TestGetIntDefaultAndOverride(t *testing.T) {
	n, err := GetInt("CONFIG_TEST_UNSET_INT", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	t.Setenv("CONFIG_TEST_INT", "7")
	n, err = GetInt("CONFIG_TEST_INT", 42)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	t.Setenv("CONFIG_TEST_INT", "not-a-number")
	_, err = GetInt("CONFIG_TEST_INT", 42)
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	d, err := GetDuration("CONFIG_TEST_UNSET_DUR", 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, d)

	t.Setenv("CONFIG_TEST_DUR", "250ms")
	d, err = GetDuration("CONFIG_TEST_DUR", 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

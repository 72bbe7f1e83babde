package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("flush batch", cause)

	assert.True(t, Is(err, KindStore))
	assert.False(t, Is(err, KindCache))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "flush batch")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindsAreDistinct(t *testing.T) {
	assert.True(t, Is(Config("op", nil), KindConfig))
	assert.True(t, Is(Load("op", nil), KindLoad))
	assert.True(t, Is(Bus("op", nil), KindBus))
	assert.True(t, Is(Cache("op", nil), KindCache))
	assert.True(t, Is(Protocol("op", nil), KindProtocol))
}

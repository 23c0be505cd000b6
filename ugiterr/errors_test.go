package ugiterr

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndIs(t *testing.T) {
	err := New(NotFound, "ref %s", "HEAD")
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, Corrupt))
	assert.Contains(t, err.Error(), "NotFound")
	assert.Contains(t, err.Error(), "HEAD")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(IoError, nil, "writing %s", "x"))
}

func TestWrapCarriesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IoError, cause, "writing object %s", "abc")
	require.Error(t, err)
	assert.True(t, Is(err, IoError))
	assert.Contains(t, err.Error(), "disk full")

	var ue *Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, IoError, ue.Kind())
	assert.Equal(t, cause.Error(), pkgerrors.Cause(ue).Error())
}

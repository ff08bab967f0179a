//go:build !gocv
// +build !gocv

package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/santhosh11wnl/Sai/internal/imaging"
)

func TestNew_OpenCVWithoutTag(t *testing.T) {
	e, err := New(EngineOpenCV, imaging.DefaultThresholdOptions())
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestOpenCVEngine_StubMethodsFail(t *testing.T) {
	var e OpenCVEngine
	assert.Equal(t, EngineOpenCV, e.Name())

	_, err := e.Binarize(nil)
	assert.ErrorIs(t, err, errNoOpenCV)
	_, err = e.FindContours(nil)
	assert.ErrorIs(t, err, errNoOpenCV)
	_, err = e.Inpaint(nil, nil, 3)
	assert.ErrorIs(t, err, errNoOpenCV)
}

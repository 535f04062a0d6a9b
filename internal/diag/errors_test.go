package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	parseErr := &ParseError{Pos: source.LineCol{Line: 3, Col: 7}, Message: "unexpected \"}\""}
	assert.Equal(t, `parse error at line 3, column 7: unexpected "}"`, parseErr.Error())

	related := source.LineCol{Line: 1, Col: 4}
	annErr := &AnnotationError{Pos: source.LineCol{Line: 9, Col: 4}, Message: "multiple @guard annotations", Related: &related}
	assert.Equal(t, "annotation error at line 9, column 4: multiple @guard annotations (see line 1, column 4)", annErr.Error())

	cfgErr := &ConfigurationError{Message: "no guard"}
	assert.Equal(t, "configuration error: no guard", cfgErr.Error())
}

func TestPositionAndClassification(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("example.c: %w", &ParseError{Pos: source.LineCol{Line: 2, Col: 1}})
	pos, ok := Position(wrapped)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), pos.Line)
	assert.True(t, IsGenerationError(wrapped))

	_, ok = Position(&ConfigurationError{Message: "x"})
	assert.False(t, ok)
	assert.True(t, IsGenerationError(&ConfigurationError{}))

	assert.False(t, IsGenerationError(errors.New("disk full")))
}

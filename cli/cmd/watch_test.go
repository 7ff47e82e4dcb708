package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/wintitle/lang"
)

func TestWatch_Count(t *testing.T) {
	w := &Watch{
		Source:    Source{Expr: `upcase title`},
		Variables: Variables{Var: []string{"title=doc"}},
		Host:      noExec(),
		Interval:  time.Millisecond,
		Count:     1,
	}

	out, err := run(t, w, "")
	require.NoError(t, err)
	assert.Equal(t, "DOC\n", out)
}

func TestWatch_PrintsOnlyChanges(t *testing.T) {
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	w := &Watch{
		Source:   Source{Expr: `"static"`},
		Host:     noExec(),
		Interval: 5 * time.Millisecond,
	}

	require.NoError(t, w.Run(WithOutput(ctx, &out)))
	assert.Equal(t, "static\n", out.String())
}

func TestWatch_SyntaxError(t *testing.T) {
	w := &Watch{Source: Source{Expr: `(`}, Host: noExec()}

	_, err := run(t, w, "")
	assert.ErrorIs(t, err, lang.ErrUnexpectedToken)
}

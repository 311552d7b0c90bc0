package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExceptionSingleStep(t *testing.T) {
	sql := `BEGIN
	UPDATE tb_contact SET deleted_at = now() WHERE pk_contact = $1;
EXCEPTION
	WHEN no_data_found THEN RAISE NOTICE 'missing';
	WHEN others THEN RAISE;
END;`

	steps, err := parseException(sql)
	require.NoError(t, err)
	require.Len(t, steps, 1)

	// One summarizing step carrying the untouched handler block.
	assert.Equal(t, "try-except", steps[0].Kind)
	assert.Contains(t, steps[0].RawText, "EXCEPTION")
	assert.Contains(t, steps[0].RawText, "no_data_found")
	assert.Contains(t, steps[0].RawText, "WHEN others THEN RAISE;")
	assert.Empty(t, steps[0].Then)
	assert.Empty(t, steps[0].Else)
}

func TestParseExceptionAbsent(t *testing.T) {
	steps, err := parseException("BEGIN UPDATE t SET x = 1; END;")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestParseExceptionHandlers(t *testing.T) {
	block := `
	WHEN unique_violation THEN RETURN false;
	WHEN others THEN RAISE;`

	handlers := parseExceptionHandlers(block)
	require.Len(t, handlers, 2)
	assert.Equal(t, "unique_violation", handlers[0].condition)
	assert.Equal(t, "RETURN false;", handlers[0].action)
	assert.Equal(t, "others", handlers[1].condition)
	assert.Equal(t, "RAISE;", handlers[1].action)
}

func TestParseExceptionHandlersSkipMalformed(t *testing.T) {
	// The second clause lacks THEN and is dropped, not an error.
	block := `WHEN unique_violation THEN RETURN false; WHEN others RAISE;`
	handlers := parseExceptionHandlers(block)
	require.Len(t, handlers, 1)
	assert.Equal(t, "unique_violation", handlers[0].condition)
}

func TestExceptionStats(t *testing.T) {
	assert.Equal(t, 2, exceptionStats("EXCEPTION WHEN a THEN x; WHEN b THEN y;"))
	assert.Equal(t, 0, exceptionStats("SELECT 1"))
}

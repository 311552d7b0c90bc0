package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursorOpsLifecycle(t *testing.T) {
	sql := `
DECLARE
	cur_contacts CURSOR FOR SELECT pk_contact FROM tb_contact WHERE NOT is_deleted;
BEGIN
	OPEN cur_contacts;
	FETCH cur_contacts INTO v_contact;
	CLOSE cur_contacts;
END;`

	steps, err := parseCursorOps(sql)
	require.NoError(t, err)
	require.Len(t, steps, 4)

	assert.Equal(t, "cursor_declare", steps[0].Kind)
	assert.Equal(t, "cur_contacts CURSOR FOR SELECT pk_contact FROM tb_contact WHERE NOT is_deleted", steps[0].RawText)
	assert.Equal(t, "cursor_open", steps[1].Kind)
	assert.Equal(t, "cursor_fetch", steps[2].Kind)
	assert.Equal(t, "FETCH cur_contacts INTO v_contact", steps[2].RawText)
	assert.Equal(t, "cursor_close", steps[3].Kind)
}

func TestParseCursorOpsFetchInLoop(t *testing.T) {
	sql := `
	OPEN cur;
	LOOP
		FETCH cur INTO rec;
		EXIT WHEN NOT FOUND;
	END LOOP;
	CLOSE cur;`

	steps, err := parseCursorOps(sql)
	require.NoError(t, err)

	var kinds []string
	for _, s := range steps {
		kinds = append(kinds, s.Kind)
	}
	assert.Contains(t, kinds, "cursor_open")
	assert.Contains(t, kinds, "cursor_fetch")
	assert.Contains(t, kinds, "cursor_close")
}

func TestParseCursorOpsNone(t *testing.T) {
	steps, err := parseCursorOps("SELECT 1;")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestCursorStats(t *testing.T) {
	sql := `a CURSOR FOR SELECT 1; b CURSOR FOR SELECT 2;
		FETCH a INTO x; FETCH b INTO y; FETCH b INTO z;`
	declarations, fetches := cursorStats(sql)
	assert.Equal(t, 2, declarations)
	assert.Equal(t, 3, fetches)
}

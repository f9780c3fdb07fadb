package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/lostwrite/pkg/rules"
)

func TestLogLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lost_write.log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.LostBlock(4242, 139, "/u01/oradata/users01.dbf"))
	require.NoError(t, l.ConfigError(4242))
	require.NoError(t, l.RuleInfo(4242, rules.Rule{Path: "/u01/oradata/users01.dbf", Block: 139, BlockSize: 8192}))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"Pid 4242: losing block 139 on write of datafile /u01/oradata/users01.dbf\n"+
		"Pid 4242: ERROR: Failed to parse config file.\n"+
		"Pid 4242: INFO: datafile=/u01/oradata/users01.dbf, block=139, block_size=8192\n",
		string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&^os.FileMode(FileMode), "no bits beyond rw-rw----")
}

func TestLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lost_write.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0600))

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.LostBlock(1, 2, "/a.dbf"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nPid 1: losing block 2 on write of datafile /a.dbf\n", string(data))
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "lost_write.log"))
	require.ErrorIs(t, err, ErrOpenLog)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConcurrentAppendsStayIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lost_write.log")
	datafile := "/u01/oradata/" + strings.Repeat("x", 200) + ".dbf"

	const writers = 32
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l, err := Open(path)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, l.LostBlock(pid, int64(i+1), datafile))
				assert.NoError(t, l.Close())
			}
		}(1000 + w)
	}
	wg.Wait()

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, writers*perWriter)

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		require.Equal(t, RecordLost, rec.Kind, "line %q", rec.Raw)
		require.Equal(t, datafile, rec.Path)
		key := fmt.Sprintf("%d/%d", rec.Pid, rec.Block)
		require.False(t, seen[key], "duplicate record %s", key)
		seen[key] = true
	}
}

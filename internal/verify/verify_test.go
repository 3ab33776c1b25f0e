package verify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_CleanSource(t *testing.T) {
	v := New()
	sources := []string{
		"",
		"x = 1\n",
		"def f(a, b=2):\n    return a ** b\n",
		"class C:\n    @property\n    def name(self):\n        return self._name\n",
		"result = [x * 2 for x in items if x]\n",
	}
	for _, src := range sources {
		errs, err := v.Check(context.Background(), []byte(src))
		require.NoError(t, err)
		assert.Empty(t, errs, "source: %q", src)
	}
}

func TestCheck_BrokenSource(t *testing.T) {
	v := New()
	sources := []string{
		"def f(:\n    pass\n",
		"x = (1 + \n",
		"class :\n",
		"if x\n    pass\n",
	}
	for _, src := range sources {
		errs, err := v.Check(context.Background(), []byte(src))
		require.NoError(t, err)
		assert.NotEmpty(t, errs, "source: %q", src)
	}
}

func TestCheck_ReportsPosition(t *testing.T) {
	v := New()
	errs, err := v.Check(context.Background(), []byte("ok = 1\nbad = (2 +\n"))
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "line")
}

func TestCheck_Concurrent(t *testing.T) {
	v := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs, err := v.Check(context.Background(), []byte("a = b + c\n"))
			if assert.NoError(t, err) {
				assert.Empty(t, errs)
			}
		}()
	}
	wg.Wait()
}

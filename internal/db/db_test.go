package db

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

func TestDBSetFileBumpsRevisionOnChange(t *testing.T) {
	d := New()
	require.Equal(t, uint64(0), d.Revision())

	d.SetFile(1, FileInput{Path: "a.sol", Text: []byte("x"), Version: 0})
	require.Equal(t, uint64(1), d.Revision())

	// Re-setting the same version/path is a no-op.
	d.SetFile(1, FileInput{Path: "a.sol", Text: []byte("x"), Version: 0})
	require.Equal(t, uint64(1), d.Revision())

	d.SetFile(1, FileInput{Path: "a.sol", Text: []byte("y"), Version: 1})
	require.Equal(t, uint64(2), d.Revision())
}

func TestDBUnknownFileError(t *testing.T) {
	d := New()
	_, err := d.FileInput(42)
	require.ErrorIs(t, err, ErrUnknownFile)
}

func TestCacheReturnsPointerEqualResultWithoutInterleavingWrites(t *testing.T) {
	c := NewCache[intern.ProjectID, *int]()
	var calls int32
	compute := func(ctx context.Context) (*int, error) {
		atomic.AddInt32(&calls, 1)
		v := 7
		return &v, nil
	}

	v1, err := c.Get(context.Background(), intern.ProjectID(1), Fingerprint(100), compute)
	require.NoError(t, err)
	v2, err := c.Get(context.Background(), intern.ProjectID(1), Fingerprint(100), compute)
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, int32(1), calls)
}

func TestCacheRecomputesOnFingerprintChange(t *testing.T) {
	c := NewCache[intern.ProjectID, *int]()
	var calls int32
	compute := func(ctx context.Context) (*int, error) {
		n := int(atomic.AddInt32(&calls, 1))
		return &n, nil
	}

	v1, _ := c.Get(context.Background(), intern.ProjectID(1), Fingerprint(1), compute)
	v2, _ := c.Get(context.Background(), intern.ProjectID(1), Fingerprint(2), compute)

	assert.NotSame(t, v1, v2)
	assert.Equal(t, int32(2), calls)
}

func TestCacheCancellation(t *testing.T) {
	c := NewCache[intern.ProjectID, int]()
	started := make(chan struct{})
	compute := func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, intern.ProjectID(1), Fingerprint(1), compute)
		errc <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Get did not observe cancellation")
	}
}

func TestFingerprintBuilderDeterministic(t *testing.T) {
	fp1 := NewFingerprintBuilder().WriteString("a").WriteUint64(1).Build()
	fp2 := NewFingerprintBuilder().WriteString("a").WriteUint64(1).Build()
	fp3 := NewFingerprintBuilder().WriteString("a").WriteUint64(2).Build()

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
}

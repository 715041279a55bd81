package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/core"
)

// mapStore is an in-memory Store for tests.
type mapStore struct {
	entries map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{entries: map[string][]byte{}}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Put(_ context.Context, key string, value []byte) error {
	s.entries[key] = value
	return nil
}

func (s *mapStore) Close() error { return nil }

// failStore fails every operation.
type failStore struct{}

func (failStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failStore) Put(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func (failStore) Close() error { return nil }

func sampleBundle() Bundle {
	return Bundle{
		Chunks: []core.Chunk{
			{Content: "This is a sample chunk.", Metadata: map[string]string{core.MetaChunkIndex: "0", core.MetaTotalChunks: "2"}},
			{Content: "Another sample chunk.", Metadata: map[string]string{core.MetaChunkIndex: "1", core.MetaTotalChunks: "2"}},
		},
		Embeddings: [][]float32{
			{0.1, 0.2, 0.3},
			{0.4, 0.5, 0.6},
		},
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	a := NewArtifacts(newMapStore())
	ctx := context.Background()

	_, ok := a.Get(ctx, "fp-1")
	assert.False(t, ok, "expected miss before put")

	a.Put(ctx, "fp-1", sampleBundle())

	got, ok := a.Get(ctx, "fp-1")
	require.True(t, ok)
	assert.Equal(t, sampleBundle().Chunks, got.Chunks)
	assert.Equal(t, sampleBundle().Embeddings, got.Embeddings)
}

func TestArtifactsCorruptEntryIsMiss(t *testing.T) {
	store := newMapStore()
	store.entries["fp-bad"] = []byte{0x01, 0x02, 0x03}

	a := NewArtifacts(store)
	_, ok := a.Get(context.Background(), "fp-bad")
	assert.False(t, ok)
}

func TestArtifactsToleratesFailingStore(t *testing.T) {
	a := NewArtifacts(failStore{})
	ctx := context.Background()

	_, ok := a.Get(ctx, "fp-1")
	assert.False(t, ok, "read failure should look like a miss")

	// Must not panic or surface the error.
	a.Put(ctx, "fp-1", sampleBundle())
}

func TestBundleValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, sampleBundle().Validate())
	})

	t.Run("row count mismatch", func(t *testing.T) {
		b := sampleBundle()
		b.Embeddings = b.Embeddings[:1]
		assert.Error(t, b.Validate())
	})

	t.Run("ragged rows", func(t *testing.T) {
		b := sampleBundle()
		b.Embeddings[1] = []float32{0.4}
		assert.Error(t, b.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, Bundle{}.Validate())
	})
}

func TestBundleSerializationRoundTrip(t *testing.T) {
	in := sampleBundle()

	out, err := UnmarshalBundle(MarshalBundle(in))
	require.NoError(t, err)
	assert.Equal(t, in.Chunks, out.Chunks)
	assert.Equal(t, in.Embeddings, out.Embeddings)
}

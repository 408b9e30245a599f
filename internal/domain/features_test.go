package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureManifest(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		count   int
		wantErr bool
	}{
		{
			name:  "valid manifest",
			names: []string{"a", "b", "c"},
			count: 3,
		},
		{
			name:  "count may disagree with name list",
			names: []string{"a", "b"},
			count: 3,
		},
		{
			name:    "empty name list",
			names:   nil,
			count:   1,
			wantErr: true,
		},
		{
			name:    "duplicate name",
			names:   []string{"a", "a"},
			count:   2,
			wantErr: true,
		},
		{
			name:    "blank name",
			names:   []string{"a", ""},
			count:   2,
			wantErr: true,
		},
		{
			name:    "non-positive count",
			names:   []string{"a"},
			count:   0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest, err := NewFeatureManifest(tt.names, tt.count)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidContract)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.names, manifest.Names())
			assert.Equal(t, tt.count, manifest.Count())
		})
	}
}

func TestFeatureManifestContains(t *testing.T) {
	manifest, err := NewFeatureManifest([]string{"a", "b"}, 2)
	require.NoError(t, err)

	assert.True(t, manifest.Contains("a"))
	assert.True(t, manifest.Contains("b"))
	assert.False(t, manifest.Contains("c"))
}

func TestNewFeatureTable(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		table, err := NewFeatureTable([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)

		assert.Equal(t, 2, table.NumRows())
		assert.Equal(t, 2, table.NumColumns())
		assert.Equal(t, []float64{3, 4}, table.Row(1).Values())
	})

	t.Run("ragged row rejected", func(t *testing.T) {
		_, err := NewFeatureTable([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
		assert.ErrorIs(t, err, ErrInvalidContract)
	})

	t.Run("no columns rejected", func(t *testing.T) {
		_, err := NewFeatureTable(nil, nil)
		assert.ErrorIs(t, err, ErrInvalidContract)
	})
}

func TestFeatureVectorFingerprint(t *testing.T) {
	t.Run("column order does not change the key", func(t *testing.T) {
		v1, err := NewFeatureVector([]string{"a", "b"}, []float64{1.5, 2})
		require.NoError(t, err)
		v2, err := NewFeatureVector([]string{"b", "a"}, []float64{2, 1.5})
		require.NoError(t, err)

		assert.Equal(t, v1.Fingerprint(), v2.Fingerprint(), "reordered vectors should hash identically")
	})

	t.Run("different values change the key", func(t *testing.T) {
		v1, err := NewFeatureVector([]string{"a", "b"}, []float64{1, 2})
		require.NoError(t, err)
		v2, err := NewFeatureVector([]string{"a", "b"}, []float64{1, 2.0001})
		require.NoError(t, err)

		assert.NotEqual(t, v1.Fingerprint(), v2.Fingerprint())
	})

	t.Run("key is stable hex", func(t *testing.T) {
		v, err := NewFeatureVector([]string{"a"}, []float64{1})
		require.NoError(t, err)

		first := v.Fingerprint()
		assert.Len(t, first, 64, "sha256 hex length")
		assert.Equal(t, first, v.Fingerprint(), "fingerprint should be deterministic")
	})

	t.Run("mismatched lengths rejected", func(t *testing.T) {
		_, err := NewFeatureVector([]string{"a", "b"}, []float64{1})
		assert.ErrorIs(t, err, ErrInvalidContract)
	})
}

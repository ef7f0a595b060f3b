package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

func TestMakeKey_Deterministic(t *testing.T) {
	t.Parallel()

	params := map[string]any{
		"counties":  []string{"alameda, ca"},
		"years":     []int{2020, 2021},
		"loan_type": "all",
	}

	first, err := MakeKey(model.AppBizsight, params)
	require.NoError(t, err)
	second, err := MakeKey(model.AppBizsight, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "bizsight:"))
	assert.Len(t, first, len("bizsight:")+keyHashLen)
}

func TestMakeKey_EquivalentInputsCollide(t *testing.T) {
	t.Parallel()

	// Two differently-shaped raw inputs that normalize identically must key
	// identically.
	a, err := Normalize(model.AppBizsight, map[string]any{
		"county":     "Alameda, CA",
		"start_year": 2020,
		"end_year":   2022,
	})
	require.NoError(t, err)
	b, err := Normalize(model.AppBizsight, map[string]any{
		"counties": []any{"alameda, ca"},
		"years":    []any{2022.0, 2021.0, 2020.0},
	})
	require.NoError(t, err)

	keyA, err := MakeKey(model.AppBizsight, a)
	require.NoError(t, err)
	keyB, err := MakeKey(model.AppBizsight, b)
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)
}

func TestMakeKey_DifferentParamsDiffer(t *testing.T) {
	t.Parallel()

	base := map[string]any{"counties": []string{"cook, il"}, "loan_type": "all"}
	other := map[string]any{"counties": []string{"cook, il"}, "loan_type": "sba"}

	keyA, err := MakeKey(model.AppBizsight, base)
	require.NoError(t, err)
	keyB, err := MakeKey(model.AppBizsight, other)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyB)
}

// Identical params under different applications must never collide.
func TestMakeKey_ApplicationNamespacing(t *testing.T) {
	t.Parallel()

	params := map[string]any{"counties": []string{"cook, il"}}

	lend, err := MakeKey(model.AppLendsight, params)
	require.NoError(t, err)
	biz, err := MakeKey(model.AppBizsight, params)
	require.NoError(t, err)

	assert.NotEqual(t, lend, biz)
	assert.True(t, strings.HasPrefix(lend, "lendsight:"))
	assert.True(t, strings.HasPrefix(biz, "bizsight:"))
}

func TestParamsHash_MatchesKeySuffixSource(t *testing.T) {
	t.Parallel()

	params := map[string]any{"counties": []string{"cook, il"}}
	hash, err := ParamsHash(params)
	require.NoError(t, err)
	assert.Len(t, hash, keyHashLen)

	key, err := MakeKey(model.AppBizsight, params)
	require.NoError(t, err)
	assert.Equal(t, "bizsight:"+hash, key)
}

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByKeys(t *testing.T) {
	t.Run("SingleScalarChange", func(t *testing.T) {
		changes := ByKeys(
			map[string]any{"hasW2": false},
			map[string]any{"hasW2": true},
			"profile",
		)

		require.Len(t, changes, 1)
		assert.Equal(t, "profile.hasW2", changes[0].Field)
		assert.Equal(t, false, changes[0].Old)
		assert.Equal(t, true, changes[0].New)
		assert.True(t, changes[0].OldDefined)
	})

	t.Run("KeysRemovedFromNewAreNeverReported", func(t *testing.T) {
		changes := ByKeys(map[string]any{"a": 1}, map[string]any{}, "profile")
		assert.Empty(t, changes)
	})

	t.Run("KeyAbsentFromOldReportsUndefinedOld", func(t *testing.T) {
		changes := ByKeys(map[string]any{}, map[string]any{"a": 1}, "profile")

		require.Len(t, changes, 1)
		assert.Equal(t, "profile.a", changes[0].Field)
		assert.Nil(t, changes[0].Old)
		assert.False(t, changes[0].OldDefined)
		assert.Equal(t, 1, changes[0].New)
	})

	t.Run("EqualValuesProduceNoChange", func(t *testing.T) {
		old := map[string]any{"name": "Ada", "hasW2": true}
		changes := ByKeys(old, map[string]any{"name": "Ada", "hasW2": true}, "profile")
		assert.Empty(t, changes)
	})

	t.Run("ExplicitNullOldIsDefined", func(t *testing.T) {
		changes := ByKeys(
			map[string]any{"status": nil},
			map[string]any{"status": "SINGLE"},
			"profile",
		)

		require.Len(t, changes, 1)
		assert.Nil(t, changes[0].Old)
		assert.True(t, changes[0].OldDefined)
	})

	t.Run("OutputIsOrderedByKey", func(t *testing.T) {
		changes := ByKeys(
			map[string]any{},
			map[string]any{"zeta": 1, "alpha": 2, "mid": 3},
			"ns",
		)

		require.Len(t, changes, 3)
		assert.Equal(t, "ns.alpha", changes[0].Field)
		assert.Equal(t, "ns.mid", changes[1].Field)
		assert.Equal(t, "ns.zeta", changes[2].Field)
	})

	t.Run("DeepComparisonForCompositeValues", func(t *testing.T) {
		old := map[string]any{"deps": []any{"a", "b"}}

		changes := ByKeys(old, map[string]any{"deps": []any{"a", "b"}}, "ns")
		assert.Empty(t, changes)

		changes = ByKeys(old, map[string]any{"deps": []any{"a", "c"}}, "ns")
		require.Len(t, changes, 1)
		assert.Equal(t, "ns.deps", changes[0].Field)
	})

	t.Run("EmptyNamespaceLeavesFieldUnqualified", func(t *testing.T) {
		changes := ByKeys(map[string]any{}, map[string]any{"a": 1}, "")
		require.Len(t, changes, 1)
		assert.Equal(t, "a", changes[0].Field)
	})
}

func TestSingleField(t *testing.T) {
	t.Run("UndefinedNewValueIsNoOp", func(t *testing.T) {
		changes := SingleField(
			map[string]any{"status": "SINGLE"},
			map[string]any{},
			"status",
		)
		assert.Empty(t, changes)
	})

	t.Run("EqualValuesProduceNoChange", func(t *testing.T) {
		changes := SingleField(
			map[string]any{"status": "SINGLE"},
			map[string]any{"status": "SINGLE"},
			"status",
		)
		assert.Empty(t, changes)
	})

	t.Run("NullOldToDefinedNewIsAChange", func(t *testing.T) {
		changes := SingleField(
			map[string]any{"status": nil},
			map[string]any{"status": "SINGLE"},
			"status",
		)

		require.Len(t, changes, 1)
		assert.Equal(t, "status", changes[0].Field)
		assert.Nil(t, changes[0].Old)
		assert.True(t, changes[0].OldDefined)
		assert.Equal(t, "SINGLE", changes[0].New)
	})

	t.Run("AbsentOldIsUndefined", func(t *testing.T) {
		changes := SingleField(
			map[string]any{},
			map[string]any{"status": "MARRIED_FILING_JOINTLY"},
			"status",
		)

		require.Len(t, changes, 1)
		assert.False(t, changes[0].OldDefined)
	})
}

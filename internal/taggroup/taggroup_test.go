package taggroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

func TestGroupByTag(t *testing.T) {
	doc, err := domain.ParseDocument([]byte(`{"paths": {
		"/orders": {
			"get": {"tags": ["b", "a"], "operationId": "listOrders"},
			"post": {"operationId": "createOrder"}
		},
		"/users": {
			"get": {"tags": ["a"], "operationId": "listUsers"},
			"delete": {"tags": [], "operationId": "purgeUsers"}
		}
	}}`))
	require.NoError(t, err)

	groups := GroupByTag(doc.Paths)

	var tags []string
	for _, g := range groups {
		tags = append(tags, g.Tag)
	}
	assert.Equal(t, []string{"b", "a", DefaultTag}, tags)

	t.Run("fan-out", func(t *testing.T) {
		a, ok := groups.Lookup("a")
		require.True(t, ok)
		b, ok := groups.Lookup("b")
		require.True(t, ok)

		require.Len(t, b, 1)
		assert.Equal(t, "listOrders", b[0].OperationID)
		require.Len(t, a, 2)
		assert.Equal(t, "listOrders", a[0].OperationID)
		assert.Equal(t, "listUsers", a[1].OperationID)
	})

	t.Run("untagged operations land in default only", func(t *testing.T) {
		def, ok := groups.Lookup(DefaultTag)
		require.True(t, ok)
		require.Len(t, def, 2)
		assert.Equal(t, "createOrder", def[0].OperationID)
		assert.Equal(t, "post", def[0].Method)
		assert.Equal(t, "/orders", def[0].Path)
		assert.Equal(t, "purgeUsers", def[1].OperationID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, GroupByTag(nil))
		empty, err := domain.ParseDocument([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, GroupByTag(empty.Paths))
	})
}

package expr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	node, err := newTestParser().Parse(`!"Active" || ?`)
	require.NoError(t, err)

	data, err := json.Marshal(Tree(node))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "LogicalExpression",
		"operator": "||",
		"left": {
			"type": "UnaryExpression",
			"operator": "!",
			"prefix": true,
			"argument": {"type": "Literal", "value": "Active", "raw": "\"Active\""}
		},
		"right": {"type": "UnaryExpression", "operator": "?", "prefix": true, "argument": null}
	}`, string(data))
}

func TestTree_Compound(t *testing.T) {
	node, err := newTestParser().Parse("a f(b), [1]")
	require.NoError(t, err)

	tree := Tree(node)
	assert.Equal(t, "Compound", tree["type"])
	body := tree["body"].([]any)
	require.Len(t, body, 3)
	assert.Equal(t, "CallExpression", body[1].(map[string]any)["type"])
	assert.Equal(t, "ArrayExpression", body[2].(map[string]any)["type"])
}

func TestTree_NaNLiteralIsEncodable(t *testing.T) {
	node, err := newTestParser().Parse(".")
	require.NoError(t, err)

	_, err = json.Marshal(Tree(node))
	assert.NoError(t, err)
	assert.Nil(t, Tree(nil))
}

func TestTree_RawIsSourceText(t *testing.T) {
	node, err := newTestParser().Parse(`'C:\temp'`)
	require.NoError(t, err)

	tree := Tree(node)
	assert.Equal(t, `'C:\temp'`, tree["raw"])
	assert.Equal(t, "C:\temp", tree["value"])
}

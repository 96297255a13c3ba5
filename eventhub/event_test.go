package eventhub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent("Update Identity Event", TypeEdgeIdentity, SourceUpdateIdentity, map[string]any{"k": "v"})

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.True(t, e.Is(TypeEdgeIdentity, SourceUpdateIdentity))
	assert.False(t, e.Is(TypeEdgeIdentity, SourceRemoveIdentity))
	assert.NotEqual(t, e.ID, NewEvent("other", TypeHub, SourceSharedState, nil).ID)
}

func TestNewResponseEvent(t *testing.T) {
	request := NewEvent("Get Identities", TypeEdgeIdentity, SourceRequestIdentity, nil)
	response := NewResponseEvent("Identities Response", TypeEdgeIdentity, SourceResponseIdentity, nil, request)

	assert.Equal(t, request.ID, response.ResponseID)
	assert.NotEqual(t, request.ID, response.ID)
}

func TestNewSharedStateEvent(t *testing.T) {
	state := map[string]any{"identityMap": map[string]any{}}
	e := NewSharedStateEvent("com.adobe.edge.identity", state)

	assert.True(t, e.Is(TypeHub, SourceSharedState))
	assert.Equal(t, "com.adobe.edge.identity", e.Data[KeyStateOwner])
	assert.Equal(t, state, e.Data[KeyState])
}

func TestEncodeDecode(t *testing.T) {
	original := NewEvent("Update Identity Event", TypeEdgeIdentity, SourceUpdateIdentity, map[string]any{
		"identityMap": map[string]any{
			"Email": []any{map[string]any{"id": "a@b.com", "authenticatedState": "ambiguous", "primary": false}},
		},
	})

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Name, decoded.Name)
	assert.True(t, decoded.Is(TypeEdgeIdentity, SourceUpdateIdentity))
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, original.Data, decoded.Data)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: `{"id":`},
		{name: "missing type", data: `{"id":"1","source":"s"}`},
		{name: "missing source", data: `{"id":"1","type":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

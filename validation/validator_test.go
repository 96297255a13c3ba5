package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestValidator(t *testing.T) {
	v, err := NewRequestValidator()
	require.NoError(t, err)
	assert.Len(t, v.schemas, 3)

	assert.NotPanics(t, func() { MustNewRequestValidator() })
}

func TestValidateIdentityMap(t *testing.T) {
	v := MustNewRequestValidator()

	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{
			name: "valid",
			data: map[string]any{"identityMap": map[string]any{
				"Email": []any{map[string]any{"id": "a@b.com", "authenticatedState": "authenticated", "primary": true}},
			}},
		},
		{
			name: "typed go values",
			data: map[string]any{"identityMap": map[string][]map[string]any{
				"Email": {{"id": "a@b.com"}},
			}},
		},
		{
			name: "empty identity map",
			data: map[string]any{"identityMap": map[string]any{}},
		},
		{
			name: "null and empty ids pass",
			data: map[string]any{"identityMap": map[string]any{
				"UserId": []any{map[string]any{"id": nil}, map[string]any{"id": ""}, map[string]any{}},
			}},
		},
		{
			name:    "nil payload",
			data:    nil,
			wantErr: true,
		},
		{
			name: "missing identity map",
			data: map[string]any{"other": true},
		},
		{
			name: "loosely typed item fields pass",
			data: map[string]any{"identityMap": map[string]any{"Email": []any{
				map[string]any{"id": "x", "primary": "true", "authenticatedState": 3},
				map[string]any{"id": 42},
			}}},
		},
		{
			name:    "identity map not an object",
			data:    map[string]any{"identityMap": "Email"},
			wantErr: true,
		},
		{
			name:    "namespace not an array",
			data:    map[string]any{"identityMap": map[string]any{"Email": map[string]any{"id": "a@b.com"}}},
			wantErr: true,
		},
		{
			name:    "item not an object",
			data:    map[string]any{"identityMap": map[string]any{"Email": []any{"a@b.com"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateIdentityMap(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAdID(t *testing.T) {
	v := MustNewRequestValidator()

	assert.NoError(t, v.ValidateAdID(map[string]any{"advertisingidentifier": "abc"}))
	assert.NoError(t, v.ValidateAdID(map[string]any{"advertisingidentifier": nil}))
	assert.ErrorIs(t, v.ValidateAdID(map[string]any{}), ErrInvalidRequest)
	assert.ErrorIs(t, v.ValidateAdID(map[string]any{"advertisingidentifier": 1}), ErrInvalidRequest)
}

func TestValidateLegacyECID(t *testing.T) {
	v := MustNewRequestValidator()

	assert.NoError(t, v.ValidateLegacyECID(map[string]any{"mid": "123"}))
	assert.NoError(t, v.ValidateLegacyECID(map[string]any{}))
	assert.ErrorIs(t, v.ValidateLegacyECID(map[string]any{"mid": true}), ErrInvalidRequest)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := MustNewRequestValidator().Validate("missing.json", map[string]any{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRequest)
}

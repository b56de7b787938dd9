package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Username string `json:"username" validate:"required,username"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(signup{Email: "nope", Password: "short", Username: "a!", Phone: "123", Rating: 9})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "is required", ToDetails(v.Struct(signup{Password: "longenough", Username: "abc", Rating: 1}))["email"])
	assert.Contains(t, d, "email")
	assert.Equal(t, "min length 8", d["password"])
	assert.Equal(t, "must be 3-30 letters or digits", d["username"])
	assert.Equal(t, "must be a valid phone number", d["phone"])
	assert.Equal(t, "must be at most 5", d["rating"])
}

func TestToDetailsInvalidJSON(t *testing.T) {
	var x map[string]any
	err := json.Unmarshal([]byte("{"), &x)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestValidPasses(t *testing.T) {
	err := New().Struct(signup{Email: "a@b.co", Password: "longenough", Username: "ana99", Phone: "+14155550123", Rating: 4})
	assert.NoError(t, err)
}

type cartLine struct {
	Quantity int      `json:"quantity" validate:"gte=0"`
	Images   []string `json:"images" validate:"dive,required"`
}

func TestToDetailsNumericAndDive(t *testing.T) {
	err := New().Struct(cartLine{Quantity: -1, Images: []string{""}})
	require.Error(t, err)
	d := ToDetails(err)
	assert.Equal(t, "must be greater than or equal to 0", d["quantity"])
	assert.Equal(t, "is required", d["images[0]"])
}

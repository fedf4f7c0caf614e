package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/model"
)

const validUser = `{
	"userId": 1,
	"username": "  ana ",
	"password": "pw",
	"fullName": {"firstName": "Ana", "lastName": "Lee"},
	"age": 30,
	"email": "a@b.com",
	"isActive": true,
	"hobbies": ["reading"],
	"address": {"street": "1 Rd", "city": "X", "country": "Y"}
}`

func issuePaths(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Issues))
	for _, issue := range verr.Issues {
		out[issue.Path] = issue.Message
	}
	return out
}

func TestParseUser_Valid(t *testing.T) {
	u, err := ParseUser([]byte(validUser))
	require.NoError(t, err)

	assert.Equal(t, 1, u.UserID)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, "pw", u.Password)
	assert.Equal(t, model.Name{FirstName: "Ana", LastName: "Lee"}, u.FullName)
	assert.Equal(t, 30, u.Age)
	assert.True(t, u.IsActive)
	assert.Equal(t, []string{"reading"}, u.Hobbies)
	assert.Equal(t, model.Address{Street: "1 Rd", City: "X", Country: "Y"}, u.Address)
	assert.Nil(t, u.Orders)
}

func TestParseUser_EmptyOrdersBecomeAbsent(t *testing.T) {
	raw := `{"userId":2,"username":"b","password":"p","fullName":{"firstName":"B","lastName":"C"},
		"age":1,"email":"b@c.io","isActive":false,"hobbies":[],"address":{"street":"s","city":"c","country":"k"},
		"orders":[]}`

	u, err := ParseUser([]byte(raw))
	require.NoError(t, err)
	assert.Nil(t, u.Orders)
	assert.False(t, u.HasOrders())
}

func TestParseUser_WithOrders(t *testing.T) {
	raw := `{"userId":2,"username":"b","password":"p","fullName":{"firstName":"B","lastName":"C"},
		"age":1,"email":"b@c.io","isActive":false,"hobbies":[],"address":{"street":"s","city":"c","country":"k"},
		"orders":[{"productName":" pen ","price":1.5,"quantity":4}]}`

	u, err := ParseUser([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []model.Order{{ProductName: "pen", Price: 1.5, Quantity: 4}}, u.Orders)
}

func TestParseUser_ReportsEveryViolation(t *testing.T) {
	raw := `{"userId":"1","password":7,"fullName":{"firstName":"A"},"age":3.5,"email":"nope",
		"isActive":"yes","hobbies":[1],"address":[],"orders":[{"productName":"x","price":"1"}]}`

	_, err := ParseUser([]byte(raw))
	issues := issuePaths(t, err)

	assert.Equal(t, "Expected integer, received string", issues["userId"])
	assert.Equal(t, "Required", issues["username"])
	assert.Equal(t, "Expected string, received number", issues["password"])
	assert.Equal(t, "Required", issues["fullName.lastName"])
	assert.Equal(t, "Expected integer, received float", issues["age"])
	assert.Equal(t, "Invalid email", issues["email"])
	assert.Equal(t, "isActive must be a boolean", issues["isActive"])
	assert.Equal(t, "Expected string, received number", issues["hobbies[0]"])
	assert.Equal(t, "Expected object, received array", issues["address"])
	assert.Equal(t, "Expected number, received string", issues["orders[0].price"])
	assert.Equal(t, "Required", issues["orders[0].quantity"])
	assert.Len(t, issues, 11)
}

func TestParseUser_IsActiveMessages(t *testing.T) {
	missing := `{"userId":1,"username":"a","password":"p","fullName":{"firstName":"A","lastName":"B"},
		"age":1,"email":"a@b.co","hobbies":[],"address":{"street":"s","city":"c","country":"k"}}`
	_, err := ParseUser([]byte(missing))
	assert.Equal(t, "isActive is required", issuePaths(t, err)["isActive"])

	null := `{"userId":1,"username":"a","password":"p","fullName":{"firstName":"A","lastName":"B"},
		"age":1,"email":"a@b.co","isActive":null,"hobbies":[],"address":{"street":"s","city":"c","country":"k"}}`
	_, err = ParseUser([]byte(null))
	assert.Equal(t, "isActive must be a boolean", issuePaths(t, err)["isActive"])
}

func TestParseUser_NotAnObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{name: "malformed", raw: `{"userId":`, msg: "Malformed JSON body"},
		{name: "array", raw: `[1,2]`, msg: "Expected object, received array"},
		{name: "empty", raw: ``, msg: "Malformed JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUser([]byte(tt.raw))
			assert.Equal(t, tt.msg, issuePaths(t, err)[""])
			assert.Equal(t, model.KindValidation, model.KindOf(err))
		})
	}
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder([]byte(`{"productName":"Book","price":10,"quantity":2}`))
	require.NoError(t, err)
	assert.Equal(t, model.Order{ProductName: "Book", Price: 10, Quantity: 2}, o)

	_, err = ParseOrder([]byte(`{"productName":"Book","quantity":2.5}`))
	issues := issuePaths(t, err)
	assert.Equal(t, "Required", issues["price"])
	assert.Equal(t, "Expected integer, received float", issues["quantity"])
}

func TestParseUserPatch(t *testing.T) {
	patch, err := ParseUserPatch([]byte(`{"age":31,"fullName":{"firstName":"Ana","lastName":"Kim"},"nickname":"x"}`))
	require.NoError(t, err)

	require.NotNil(t, patch.Age)
	assert.Equal(t, 31, *patch.Age)
	require.NotNil(t, patch.FullName)
	assert.Equal(t, "Kim", patch.FullName.LastName)
	assert.Nil(t, patch.Password)
	assert.Nil(t, patch.Username)
	assert.Nil(t, patch.Orders)
}

func TestParseUserPatch_EmptyOrders(t *testing.T) {
	patch, err := ParseUserPatch([]byte(`{"orders":[]}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Orders)
	assert.Empty(t, *patch.Orders)
}

func TestParseUserPatch_Violations(t *testing.T) {
	_, err := ParseUserPatch([]byte(`{"password":1,"address":{"city":"X"}}`))
	issues := issuePaths(t, err)

	assert.Equal(t, "Expected string, received number", issues["password"])
	assert.Equal(t, "Required", issues["address.street"])
	assert.Equal(t, "Required", issues["address.country"])
	assert.NotContains(t, issues, "userId")
}

package validation

import (
	"github.com/tidwall/gjson"

	"user-service/internal/model"
)

// ParseUser validates a create payload and returns the normalized user.
// All violations are reported at once in a *model.ValidationError.
func ParseUser(raw []byte) (model.User, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return model.User{}, err
	}

	var issues []model.Issue
	checkObject(doc, userSchema, "", &issues)
	if len(issues) > 0 {
		return model.User{}, &model.ValidationError{Issues: issues}
	}

	return model.User{
		UserID:   int(doc.Get("userId").Int()),
		Username: str(doc.Get("username")),
		Password: str(doc.Get("password")),
		FullName: nameFrom(doc.Get("fullName")),
		Age:      int(doc.Get("age").Int()),
		Email:    str(doc.Get("email")),
		IsActive: doc.Get("isActive").Bool(),
		Hobbies:  stringsFrom(doc.Get("hobbies")),
		Address:  addressFrom(doc.Get("address")),
		Orders:   ordersFrom(doc.Get("orders")),
	}, nil
}

// ParseOrder validates a single order payload
func ParseOrder(raw []byte) (model.Order, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return model.Order{}, err
	}

	var issues []model.Issue
	checkObject(doc, orderSchema, "", &issues)
	if len(issues) > 0 {
		return model.Order{}, &model.ValidationError{Issues: issues}
	}
	return orderFrom(doc), nil
}

// ParseUserPatch validates a replacement document. Only the fields present
// are checked, each against its schema in the create payload; nested objects
// must be complete since they replace the stored value as a whole. Unknown
// fields are ignored.
func ParseUserPatch(raw []byte) (model.UserPatch, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return model.UserPatch{}, err
	}

	var issues []model.Issue
	present := make(map[string]gjson.Result, len(userSchema))
	for _, f := range userSchema {
		r := doc.Get(f.name)
		if !r.Exists() {
			continue
		}
		checkValue(r, f, f.name, &issues)
		present[f.name] = r
	}
	if len(issues) > 0 {
		return model.UserPatch{}, &model.ValidationError{Issues: issues}
	}

	var patch model.UserPatch
	for name, r := range present {
		switch name {
		case "userId":
			v := int(r.Int())
			patch.UserID = &v
		case "username":
			v := str(r)
			patch.Username = &v
		case "password":
			v := str(r)
			patch.Password = &v
		case "fullName":
			v := nameFrom(r)
			patch.FullName = &v
		case "age":
			v := int(r.Int())
			patch.Age = &v
		case "email":
			v := str(r)
			patch.Email = &v
		case "isActive":
			v := r.Bool()
			patch.IsActive = &v
		case "hobbies":
			v := stringsFrom(r)
			patch.Hobbies = &v
		case "address":
			v := addressFrom(r)
			patch.Address = &v
		case "orders":
			v := ordersFrom(r)
			if v == nil {
				v = []model.Order{}
			}
			patch.Orders = &v
		}
	}
	return patch, nil
}

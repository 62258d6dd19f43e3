package domain

import "testing"

func TestGetHashFromPassword(t *testing.T) {
	if len(GetHashFromPassword("1234")) != 80 {
		t.Fatal("Incorrect hash")
	}
}

func TestSetPassword(t *testing.T) {
	user := User{
		Login: "test",
		Hash:  "hash",
		Email: "test@acme.com",
	}
	user.SetPassword("1234")
	if len(user.Hash) != 80 {
		t.Fatal("Incorrect hash")
	}
	if !user.CheckPassword("1234") {
		t.Fatal("Password does not verify")
	}
	if user.CheckPassword("4321") {
		t.Fatal("Wrong password verified")
	}
}

func TestValidateLogin(t *testing.T) {
	for _, login := range []string{"bob", "jojo_kent", "a-b-c", "X123456789012345678Y"} {
		if err := ValidateLogin(login); err != nil {
			t.Errorf("Login %q should be valid: %v", login, err)
		}
	}
	for _, login := range []string{"", "ab", "with space", "юзер", "X123456789012345678YZ"} {
		if err := ValidateLogin(login); err == nil {
			t.Errorf("Login %q should be invalid", login)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Error("Short password should be rejected")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("Six char password should be accepted: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("bob@acme.com"); err != nil {
		t.Errorf("Valid email rejected: %v", err)
	}
	for _, email := range []string{"", "bob", "bob@"} {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("Email %q should be invalid", email)
		}
	}
}

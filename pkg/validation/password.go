package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const minPasswordLength = 8

// commonPasswords is a short deny list of passwords that show up constantly
// in credential dumps.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"sunshine":    {},
	"princess":    {},
	"football":    {},
	"baseball":    {},
	"welcome1":    {},
	"admin123":    {},
	"letmein1":    {},
}

// PasswordPolicy checks a candidate password against the account policy and
// returns every violated rule, not just the first. username and email are the
// account attributes the password must not resemble; either may be empty.
func PasswordPolicy(password, username, email string) []string {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		violations = append(violations, "This password is too common.")
	}
	if password != "" && entirelyNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}
	if similar(password, username) {
		violations = append(violations, "The password is too similar to the username.")
	}
	if similar(password, emailLocalPart(email)) {
		violations = append(violations, "The password is too similar to the email address.")
	}

	return violations
}

func entirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similar reports whether the password contains, or is contained by, the
// account attribute. Attributes shorter than 4 characters are ignored to
// keep short names from poisoning every password.
func similar(password, attribute string) bool {
	if len(attribute) < 4 || password == "" {
		return false
	}
	password = strings.ToLower(password)
	attribute = strings.ToLower(attribute)
	return strings.Contains(password, attribute) || strings.Contains(attribute, password)
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// pkg/accountnumber/accountnumber.go

// Package accountnumber issues virtual account numbers for receiving deposits.
//
// Numbers are 10 digits and start with the reserved "99" prefix so they never
// clash with NUBAN numbers issued by real banks. They are derived from the clock
// and the user ID, so two calls for the same user within the same millisecond
// window may collide; the unique column in the users table is the backstop.
package accountnumber

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix is reserved for virtual accounts.
	Prefix = "99"
	// Length is the total number of digits in an account number.
	Length = 10

	bankName = "Raven Virtual Bank"
)

// ErrInvalidUserID is returned for negative user IDs.
var ErrInvalidUserID = errors.New("user id must be a non-negative integer")

var validPattern = regexp.MustCompile(`^` + Prefix + `\d{8}$`)

// Generate returns a virtual account number for userID based on the current time.
func Generate(userID int64) (string, error) {
	return GenerateAt(userID, time.Now())
}

// GenerateAt returns the account number userID would receive at time t.
func GenerateAt(userID int64, t time.Time) (string, error) {
	if userID < 0 {
		return "", ErrInvalidUserID
	}

	millis := strconv.FormatInt(t.UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	} else {
		millis = strings.Repeat("0", 6-len(millis)) + millis
	}
	composed := fmt.Sprintf("%s%s%04d", Prefix, millis, userID)
	return composed[:Length], nil
}

// BankName is the label of the virtual account issuer.
func BankName() string {
	return bankName
}

// IsValid reports whether accountNumber has the virtual account format.
func IsValid(accountNumber string) bool {
	return validPattern.MatchString(accountNumber)
}

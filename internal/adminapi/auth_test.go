package adminapi

import (
	"testing"

	"github.com/talkincode/toughkiosk/pkg/common"
)

func TestPinMatches(t *testing.T) {
	if !pinMatches("2580", "2580") {
		t.Error("plaintext stored pin must match")
	}
	if pinMatches("2580", "0000") {
		t.Error("wrong pin accepted")
	}

	hashed := common.Sha256HashWithSalt("2580", common.GetSecretSalt())
	if !pinMatches(hashed, "2580") {
		t.Error("hashed stored pin must match the plaintext entry")
	}
	if pinMatches(hashed, "0000") {
		t.Error("hashed stored pin matched a wrong entry")
	}
}

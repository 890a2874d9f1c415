package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughkiosk/internal/webserver"
	"github.com/talkincode/toughkiosk/pkg/common"
)

type loginPayload struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/login", login)
}

// login checks the supplied name/PIN against the admin users carried in
// the canonical document and issues a signed token. Super admins bypass
// permission checks downstream via the document's own flag.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}

	a := getApp(c)
	doc := a.Engine().Fetch(c.Request().Context())

	for i := range doc.Admins {
		adm := &doc.Admins[i]
		if !strings.EqualFold(adm.Name, strings.TrimSpace(payload.Name)) || !pinMatches(adm.Pin, payload.Pin) {
			continue
		}
		claims := jwt.MapClaims{
			"sub":   adm.Id,
			"name":  adm.Name,
			"super": adm.IsSuperAdmin,
			"exp":   time.Now().Add(12 * time.Hour).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(a.Config().Web.Secret))
		if err != nil {
			return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", nil)
		}
		return ok(c, map[string]interface{}{"token": signed, "name": adm.Name})
	}

	return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Name or PIN incorrect", nil)
}

// pinMatches accepts both storage forms: the plaintext PIN, and a salted
// sha256 digest of it for operators who do not want readable PINs in the
// document blob.
func pinMatches(stored, supplied string) bool {
	if stored == supplied {
		return true
	}
	return stored == common.Sha256HashWithSalt(supplied, common.GetSecretSalt())
}

// operatorName extracts the admin name from the token the jwt middleware
// verified and stashed in the context.
func operatorName(c echo.Context) string {
	token, okk := c.Get("user").(*jwtv5.Token)
	if !okk {
		return "unknown"
	}
	claims, okk := token.Claims.(jwtv5.MapClaims)
	if !okk {
		return "unknown"
	}
	if name, okk := claims["name"].(string); okk {
		return name
	}
	return "unknown"
}

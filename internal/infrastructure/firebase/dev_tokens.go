package firebase

import (
	"context"
	"errors"
	"strings"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
)

const devTokenPrefix = "dev:"

// DevTokenVerifier accepts "dev:<uid>" bearer tokens. It is only wired when
// ENVIRONMENT=development and AUTH_MODE=dev.
type DevTokenVerifier struct{}

var _ TokenVerifier = DevTokenVerifier{}

func (DevTokenVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	uid, ok := strings.CutPrefix(token, devTokenPrefix)
	if !ok || !entity.ValidUserID(uid) {
		return "", errors.New("malformed dev token")
	}
	return uid, nil
}

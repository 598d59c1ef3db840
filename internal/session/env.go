package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/foiaworks/foiad/internal/portal"
)

// EnvCredentials resolves portal credentials from the process environment:
// FOIAD_PORTAL_CRED_<AGENCY> holds "username:secret" for agency <AGENCY>
// (agency ID uppercased, dashes mapped to underscores). Secret management
// beyond the environment is out of scope.
type EnvCredentials struct{}

var _ CredentialSource = EnvCredentials{}

func (EnvCredentials) Credentials(agencyID string) (portal.Credentials, error) {
	key := "FOIAD_PORTAL_CRED_" + strings.ToUpper(strings.ReplaceAll(agencyID, "-", "_"))
	v := os.Getenv(key)
	if v == "" {
		return portal.Credentials{}, fmt.Errorf("no credentials for agency %s (%s not set)", agencyID, key)
	}
	username, secret, ok := strings.Cut(v, ":")
	if !ok {
		return portal.Credentials{}, fmt.Errorf("%s: expected username:secret", key)
	}
	return portal.Credentials{
		AgencyID: agencyID,
		Username: username,
		Secret:   secret,
	}, nil
}

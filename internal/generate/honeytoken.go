package generate

import (
	"fmt"
	"strings"

	"decoyforge/internal/consistency"
	"decoyforge/internal/token"
)

// renderHoneytoken wraps a minted value in the file shape an attacker would
// expect to find it in. No provider call: the secret material is the ledger's
// value, embedded byte-identical, and everything around it comes from the
// job's consistency slots.
func renderHoneytoken(rec *token.Record, cc *consistency.Context) (string, error) {
	switch rec.Type {
	case token.TypeAccessKey:
		return fmt.Sprintf("[default]\naws_access_key_id = %s\nregion = us-east-1\noutput = json\n", rec.Value), nil

	case token.TypeSecretKey:
		return fmt.Sprintf("[default]\naws_secret_access_key = %s\nregion = us-east-1\n", rec.Value), nil

	case token.TypePrivateKey:
		// The PEM block is the value itself.
		return rec.Value, nil

	case token.TypeDBPassword:
		user, err := cc.Resolve(consistency.SlotPrimaryUsername)
		if err != nil {
			return "", err
		}
		host, err := cc.Resolve(consistency.SlotHostname)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("DB_HOST=%s\nDB_USER=%s\nDB_PASSWORD=%s\nDB_NAME=app_production\n", host, user, rec.Value), nil

	case token.TypeAPIToken:
		project, err := cc.Resolve(consistency.SlotProjectName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("# %s service credentials\nexport API_TOKEN=%s\n", project, rec.Value), nil

	case token.TypeRepoToken:
		user, err := cc.Resolve(consistency.SlotPrimaryUsername)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("https://%s:%s@github.com\n", gitUsername(user), rec.Value), nil

	case token.TypePaymentKey:
		return fmt.Sprintf("STRIPE_SECRET_KEY=%s\nSTRIPE_API_VERSION=2024-06-20\n", rec.Value), nil

	default:
		return "", fmt.Errorf("no renderer for token type %q", rec.Type)
	}
}

// gitUsername strips characters git credential URLs choke on.
func gitUsername(user string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, user)
}

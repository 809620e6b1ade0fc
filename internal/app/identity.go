package app

import (
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// Classification tells how an identity was obtained.
type Classification int

const (
	Authenticated Classification = iota
	GuestNoCredential
	GuestInvalidCredential
)

func (c Classification) String() string {
	switch c {
	case Authenticated:
		return "authenticated"
	case GuestNoCredential:
		return "guest_no_credential"
	case GuestInvalidCredential:
		return "guest_invalid_credential"
	default:
		return "unknown"
	}
}

// IdentityResolver classifies a connection's credential. It never fails:
// anonymous visitors must still reach support, so anything short of a valid
// credential yields a guest.
type IdentityResolver struct {
	Verifier core.CredentialVerifier
}

func (r IdentityResolver) Resolve(token string, conn core.ConnID) (domain.Identity, Classification) {
	if token == "" || r.Verifier == nil {
		return domain.NewGuest(string(conn)), GuestNoCredential
	}
	claims, err := r.Verifier.Verify(token)
	if err != nil {
		log.Info().Err(err).Str("module", "app.identity").Str("conn", string(conn)).Msg("credential rejected, continuing as guest")
		return domain.NewGuest(string(conn)), GuestInvalidCredential
	}
	ident, ok := claims.Identity()
	if !ok {
		log.Info().Str("module", "app.identity").Str("conn", string(conn)).Msg("credential has no user id, continuing as guest")
		return domain.NewGuest(string(conn)), GuestInvalidCredential
	}
	return ident, Authenticated
}

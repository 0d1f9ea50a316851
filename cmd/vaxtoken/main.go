// vaxtoken mints a caller token for the ledger. Identity proofing is out of
// scope for the ledger itself: whoever holds the signing key decides which
// identities exist, and this tool is how an operator hands one out.
//
// Usage:
//
//	vaxtoken                         # fresh identity, 24h token
//	vaxtoken -identity <uuid> -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwttoken "vaxledger/internal/jwt_token"
	"vaxledger/internal/platform/config"
	id "vaxledger/pkg/domain"
)

func main() {
	identityRaw := flag.String("identity", "", "caller identity (UUID); empty mints a fresh identity")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	flag.Parse()

	_ = godotenv.Load()

	caller := id.NewIdentity()
	if *identityRaw != "" {
		parsed, err := id.ParseIdentity(*identityRaw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid identity %q: %v\n", *identityRaw, err)
			os.Exit(1)
		}
		caller = parsed
	}

	token, err := jwttoken.New(config.JWTSigningKey(), *ttl).Issue(caller, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("identity: %s\ntoken:    %s\n", caller, token)
}

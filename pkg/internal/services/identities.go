package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/meetlinkapp/meetlink/pkg/internal/config"
	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

var (
	idpMutex    sync.Mutex
	idpVerifier *oidc.IDTokenVerifier
)

func identityTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	idpMutex.Lock()
	defer idpMutex.Unlock()

	if idpVerifier != nil {
		return idpVerifier, nil
	}

	issuer, err := config.IdentityIssuer()
	if err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, &RemoteServiceError{Op: "identity discovery", Err: err}
	}

	idpVerifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return idpVerifier, nil
}

// VerifyIdentityToken resolves the authenticated principal behind a
// session token issued by the identity provider.
func VerifyIdentityToken(ctx context.Context, raw string) (models.Identity, error) {
	verifier, err := identityTokenVerifier(ctx)
	if err != nil {
		return models.Identity{}, err
	}

	token, err := verifier.Verify(ctx, raw)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	_ = token.Claims(&claims)

	return models.Identity{
		ID:     token.Subject,
		Name:   claims.Name,
		Avatar: claims.Picture,
	}, nil
}

// ResolveUserIDs maps email addresses to the identity provider's user
// ids via its directory API. Addresses with no match are silently
// omitted; a partial result is not an error. No ordering guarantee.
func ResolveUserIDs(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	endpoint, err := config.IdentityEndpoint()
	if err != nil {
		return nil, err
	}
	apiKey, err := config.IdentityAPIKey()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, email := range emails {
		query.Add("email_address", email)
	}

	agent := fiber.Get(endpoint + "/v1/users?" + query.Encode())
	agent.Set(fiber.HeaderAuthorization, "Bearer "+apiKey)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, &RemoteServiceError{Op: "directory lookup", Err: errs[0]}
	}
	if code != fiber.StatusOK {
		return nil, &RemoteServiceError{Op: "directory lookup", Err: fmt.Errorf("status %d", code)}
	}

	type directoryUser struct {
		ID string `json:"id"`
	}
	var out struct {
		Data []directoryUser `json:"data"`
	}
	if err := jsoniter.Unmarshal(body, &out); err != nil {
		return nil, &RemoteServiceError{Op: "directory lookup", Err: err}
	}

	return lo.Map(out.Data, func(item directoryUser, idx int) string {
		return item.ID
	}), nil
}

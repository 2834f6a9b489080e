package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel/attribute"
)

// IdentityAPI defines required SES identity operations.
type IdentityAPI interface {
	ListIdentities(
		ctx context.Context,
		params *ses.ListIdentitiesInput,
		optFns ...func(*ses.Options)) (*ses.ListIdentitiesOutput, error)

	VerifyEmailIdentity(
		ctx context.Context,
		params *ses.VerifyEmailIdentityInput,
		optFns ...func(*ses.Options)) (*ses.VerifyEmailIdentityOutput, error)
}

// Verifier requests SES verification for recipients that are not yet known
// identities. Sandbox accounts can only deliver to verified addresses.
type Verifier struct {
	client IdentityAPI
	logger *slog.Logger
}

// NewVerifier creates a new identity verifier.
func NewVerifier(client IdentityAPI, logger *slog.Logger) *Verifier {
	return &Verifier{client: client, logger: logger}
}

// EnsureVerified requests verification for every recipient missing from the
// account's email identities and returns those addresses. Failures are
// logged and never stop the run.
func (v *Verifier) EnsureVerified(ctx context.Context, recipients []string) []string {
	ctx, span := tracer.Start(ctx, "mail.verify")
	defer span.End()

	known, err := v.identities(ctx)
	if err != nil {
		v.logger.WarnContext(ctx, "cannot list ses identities", slog.String("error", err.Error()))
		return nil
	}

	var requested []string
	for _, r := range recipients {
		if _, ok := known[strings.ToLower(r)]; ok {
			continue
		}

		if _, err := v.client.VerifyEmailIdentity(ctx, &ses.VerifyEmailIdentityInput{
			EmailAddress: aws.String(r),
		}); err != nil {
			v.logger.WarnContext(ctx, "cannot request identity verification",
				slog.String("recipient", r),
				slog.String("error", err.Error()))
			continue
		}

		v.logger.InfoContext(ctx, "requested identity verification", slog.String("recipient", r))
		requested = append(requested, r)
	}

	span.SetAttributes(attribute.Int("mail.verification_requests", len(requested)))
	return requested
}

func (v *Verifier) identities(ctx context.Context) (map[string]struct{}, error) {
	known := make(map[string]struct{})

	p := ses.NewListIdentitiesPaginator(v.client, &ses.ListIdentitiesInput{
		IdentityType: types.IdentityTypeEmailAddress,
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot list identities: %w", err)
		}
		for _, id := range page.Identities {
			known[strings.ToLower(id)] = struct{}{}
		}
	}

	return known, nil
}

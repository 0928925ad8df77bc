package postgresadapter

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// CampaignCodeGenerator mints short shareable codes from uuid entropy.
// Uniqueness is enforced by the matches table; collisions surface as
// ErrCampaignCodeTaken and the caller retries with a fresh code.
type CampaignCodeGenerator struct{}

func (CampaignCodeGenerator) NewCode(_ context.Context) (string, error) {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8]), nil
}

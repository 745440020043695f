package ipos

import "context"

type Repo interface {
	// Create assigns ID and timestamps.
	Create(ctx context.Context, ipo *IPO) error
	List(ctx context.Context) ([]*IPO, error)
	Get(ctx context.Context, id string) (*IPO, error)
	// Delete removes the listing and returns it as it was.
	Delete(ctx context.Context, id string) (*IPO, error)
	Update(ctx context.Context, id string, update *Update) (*IPO, error)
	// SetLogo replaces the logo reference, or clears it when logo is nil, and
	// returns the updated listing.
	SetLogo(ctx context.Context, id string, logo *Logo) (*IPO, error)
}

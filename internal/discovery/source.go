package discovery

import (
	"context"

	"civicintel/internal/config"
	"civicintel/internal/meetings"
)

// Params carries the inputs a source needs for one discovery pass.
type Params struct {
	Jurisdiction config.Jurisdiction
	Limit        int
}

// Source discovers candidate meeting records for a jurisdiction. Sources
// return records with empty artifact paths; acquisition happens later.
type Source interface {
	Name() meetings.Source
	Discover(ctx context.Context, params Params) ([]meetings.Record, error)
}

package rollback

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog"
)

var (
	// ErrNoPrevious is returned when fewer than two versions exist, so
	// there is nothing to roll back to.
	ErrNoPrevious = errors.New("no previous version available")
	// ErrVersionNotFound is returned when an explicit rollback target does
	// not exist under the deployment root.
	ErrVersionNotFound = errors.New("version not found")
)

// VersionStore is the slice of versions.Store the engine needs.
type VersionStore interface {
	List() ([]versions.Version, error)
	Path(label string) string
	SetCurrent(label string) error
	Delete(label string) error
}

// Engine repoints the current pointer at older (or arbitrary) versions and
// prunes versions beyond the retention count.
type Engine struct {
	Store VersionStore
}

// ToPrevious repoints current at the second-newest version; the newest is
// assumed to be the deployment being rolled away from. Returns the label
// rolled back to.
func (e Engine) ToPrevious(ctx context.Context) (string, error) {
	vs, err := e.Store.List()
	if err != nil {
		return "", err
	}
	if len(vs) < 2 {
		return "", ErrNoPrevious
	}

	previous := vs[1].Label
	if err := e.Store.SetCurrent(previous); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("version", previous).Msg("rolled back to previous version")
	return previous, nil
}

// ToVersion repoints current at an explicit label, regardless of its position
// in the version ordering. Rolling forward is allowed.
func (e Engine) ToVersion(ctx context.Context, label string) error {
	if _, err := os.Stat(e.Store.Path(label)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrVersionNotFound, label)
		}
		return fmt.Errorf("stat version %s: %w", label, err)
	}
	if err := e.Store.SetCurrent(label); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("version", label).Msg("rolled back to version")
	return nil
}

// Prune deletes every version beyond the keep newest. A negative keep is
// treated as zero. Deletion failures do not stop the remaining deletions;
// all failures are aggregated into the returned error.
func (e Engine) Prune(ctx context.Context, keep int) error {
	log := zerolog.Ctx(ctx)
	if keep < 0 {
		keep = 0
	}

	vs, err := e.Store.List()
	if err != nil {
		return err
	}
	if len(vs) <= keep {
		log.Debug().Int("versions", len(vs)).Int("keep", keep).Msg("no pruning needed")
		return nil
	}

	var errs []error
	for _, v := range vs[keep:] {
		log.Info().Str("version", v.Label).Msg("pruning old version")
		if err := e.Store.Delete(v.Label); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package loader reads the campaign list, the connected account's token
// allowance and its per-campaign contributions, and keeps the latest
// snapshot of each for display.
package loader

import (
	"context"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/Mohsinsiddi/w3fund/internal/platform"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Loader owns the campaign list and allowance snapshots. Each read category
// carries a sequence number; a response is applied only when it answers the
// most recently dispatched request of its category.
type Loader struct {
	env         platform.Env
	tracker     *campaign.Tracker
	concurrency int
	onChange    func()

	mu            sync.Mutex
	campaigns     []campaign.Campaign
	allowance     *big.Int
	contributions map[uint64]*big.Int

	campaignSeq     uint64
	allowanceSeq    uint64
	contributionSeq uint64
	loadingSeq      uint64 // campaignSeq value whose response is awaited; 0 = idle
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds parallel contribution reads.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// OnChange registers a hook called after any snapshot is replaced.
func OnChange(fn func()) Option {
	return func(l *Loader) { l.onChange = fn }
}

// WithTracker shares a status tracker across loaders.
func WithTracker(t *campaign.Tracker) Option {
	return func(l *Loader) { l.tracker = t }
}

// New creates a Loader for env.
func New(env platform.Env, opts ...Option) *Loader {
	l := &Loader{
		env:           env,
		tracker:       campaign.NewTracker(),
		concurrency:   defaultConcurrency,
		allowance:     new(big.Int),
		contributions: make(map[uint64]*big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Env returns the network context the loader reads through.
func (l *Loader) Env() platform.Env { return l.env }

// LoadCampaigns reads getCampaigns() and returns the list it received. The
// shared snapshot is replaced only if no newer load was dispatched in the
// meantime. While the newest load is in flight Loading reports true and
// Campaigns keeps returning the previous snapshot.
func (l *Loader) LoadCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	l.mu.Lock()
	l.campaignSeq++
	seq := l.campaignSeq
	l.loadingSeq = seq
	l.mu.Unlock()

	log := logger.For(ctx).WithField("seq", seq)
	if !l.env.HasPlatform() || l.env.Reader == nil {
		log.Warn("platform contract not configured; skipping campaign load")
		l.finishLoading(seq)
		return nil, nil
	}

	log.Debug("loading campaigns")
	list, err := l.env.PlatformContract().GetCampaigns(ctx)

	l.mu.Lock()
	if seq == l.loadingSeq {
		l.loadingSeq = 0
	}
	stale := seq != l.campaignSeq
	if err == nil && !stale {
		l.campaigns = list
	}
	l.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("loading campaigns")
		return nil, err
	}
	if stale {
		log.Debug("discarding stale campaign list")
		return list, nil
	}

	for _, r := range l.tracker.Observe(list) {
		log.WithFields(logrus.Fields{
			"campaign": r.ID,
			"from":     r.From.String(),
			"to":       r.To.String(),
		}).Warn("campaign status moved backwards")
	}
	l.changed()
	return list, nil
}

// RefreshCampaigns re-reads the campaign list and, when an account is
// connected, its contributions. Concurrent refreshes are not coordinated;
// the newest dispatched read wins.
func (l *Loader) RefreshCampaigns(ctx context.Context) error {
	if _, err := l.LoadCampaigns(ctx); err != nil {
		return err
	}
	if l.env.HasAccount() {
		l.LoadContributions(ctx)
	}
	return nil
}

// LoadAllowance reads token.allowance(owner, spender). A missing owner,
// spender, token or reader, or a failed read, is logged and the previous
// value is returned unchanged.
func (l *Loader) LoadAllowance(ctx context.Context, owner, spender common.Address) *big.Int {
	l.mu.Lock()
	l.allowanceSeq++
	seq := l.allowanceSeq
	l.mu.Unlock()

	log := logger.For(ctx).WithField("seq", seq)
	if owner == (common.Address{}) || spender == (common.Address{}) || !l.env.HasToken() || l.env.Reader == nil {
		log.Debug("allowance dependencies not ready; skipping")
		return l.Allowance()
	}

	a, err := l.env.TokenContract().Allowance(ctx, owner, spender)
	if err != nil {
		log.WithError(err).Error("loading allowance")
		return l.Allowance()
	}

	l.mu.Lock()
	applied := seq == l.allowanceSeq
	if applied {
		l.allowance = a
	}
	l.mu.Unlock()

	if !applied {
		log.Debug("discarding stale allowance")
		return l.Allowance()
	}
	log.WithField("allowance", a.String()).Debug("allowance loaded")
	l.changed()
	return new(big.Int).Set(a)
}

// ReloadAllowance reads the allowance the connected account has granted
// the platform contract.
func (l *Loader) ReloadAllowance(ctx context.Context) *big.Int {
	return l.LoadAllowance(ctx, l.env.Account, l.env.Platform)
}

// LoadContributions reads getContributionByUser for every campaign in the
// current snapshot. Failed reads are logged and leave that entry as it was.
func (l *Loader) LoadContributions(ctx context.Context) {
	if !l.env.HasAccount() || !l.env.HasPlatform() || l.env.Reader == nil {
		return
	}

	l.mu.Lock()
	l.contributionSeq++
	seq := l.contributionSeq
	list := append([]campaign.Campaign(nil), l.campaigns...)
	l.mu.Unlock()

	p := l.env.PlatformContract()
	results := make([]*big.Int, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, c := range list {
		g.Go(func() error {
			n, err := p.GetContributionByUser(gctx, c.ID, l.env.Account)
			if err != nil {
				logger.For(ctx).WithError(err).WithField("campaign", c.ID).Warn("loading contribution")
				return nil
			}
			results[i] = n
			return nil
		})
	}
	_ = g.Wait()

	l.mu.Lock()
	applied := seq == l.contributionSeq
	if applied {
		for i, c := range list {
			if results[i] != nil {
				l.contributions[c.ID] = results[i]
			}
		}
	}
	l.mu.Unlock()

	if applied {
		l.changed()
	}
}

// Campaigns returns a copy of the current campaign snapshot.
func (l *Loader) Campaigns() []campaign.Campaign {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]campaign.Campaign(nil), l.campaigns...)
}

// Campaign returns the campaign with id from the current snapshot.
func (l *Loader) Campaign(id uint64) (campaign.Campaign, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return campaign.Campaign{}, false
}

// Allowance returns a copy of the current allowance snapshot.
func (l *Loader) Allowance() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.allowance)
}

// Contribution returns the connected account's contribution to campaign id,
// zero when unknown.
func (l *Loader) Contribution(id uint64) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.contributions[id]; ok {
		return new(big.Int).Set(n)
	}
	return new(big.Int)
}

// Loading reports whether the newest campaign load is still in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadingSeq != 0
}

func (l *Loader) finishLoading(seq uint64) {
	l.mu.Lock()
	if l.loadingSeq == seq {
		l.loadingSeq = 0
	}
	l.mu.Unlock()
}

func (l *Loader) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

// Package workflow runs the two write paths of a campaign card: the
// approve-or-contribute step and the creator's claim.
package workflow

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/Mohsinsiddi/w3fund/internal/platform"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

var (
	errNoPlatform = errors.New("platform contract not configured")
	errNoAccount  = errors.New("no wallet connected")
	errNoToken    = errors.New("token contract not configured")
	errNegative   = errors.New("amount must not be negative")
	errBusy       = errors.New("a transaction for this campaign is already in flight")
	errNotAllowed = errors.New("claim not available for this account")
)

// State is the contribution state of one campaign.
type State uint8

const (
	StateIdle State = iota
	StateApproving
	StateContributing
)

func (s State) String() string {
	switch s {
	case StateApproving:
		return "approving"
	case StateContributing:
		return "contributing"
	default:
		return "idle"
	}
}

// Workflow sends contribution and claim transactions through an Env and
// refreshes the loader after every write attempt.
type Workflow struct {
	env             platform.Env
	refresh         func(context.Context) error
	reloadAllowance func(context.Context) *big.Int
	handler         func(Result)

	mu       sync.Mutex
	states   map[uint64]State
	claiming map[uint64]bool
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLoader refreshes campaigns and reloads the allowance through l.
func WithLoader(l *loader.Loader) Option {
	return func(w *Workflow) {
		w.refresh = l.RefreshCampaigns
		w.reloadAllowance = l.ReloadAllowance
	}
}

// WithRefresh sets the campaign refresh hook.
func WithRefresh(fn func(context.Context) error) Option {
	return func(w *Workflow) { w.refresh = fn }
}

// WithAllowanceReload sets the hook run after a successful approval.
func WithAllowanceReload(fn func(context.Context) *big.Int) Option {
	return func(w *Workflow) { w.reloadAllowance = fn }
}

// WithHandler receives every Result before it is returned.
func WithHandler(fn func(Result)) Option {
	return func(w *Workflow) { w.handler = fn }
}

// New creates a Workflow for env.
func New(env platform.Env, opts ...Option) *Workflow {
	w := &Workflow{
		env:      env,
		states:   make(map[uint64]State),
		claiming: make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the contribution state of campaign id.
func (w *Workflow) State(id uint64) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.states[id]
}

// Claiming reports whether a claim on campaign id is in flight.
func (w *Workflow) Claiming(id uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.claiming[id]
}

// CanClaim reports whether the connected account may claim c right now.
func (w *Workflow) CanClaim(c campaign.Campaign) bool {
	if !w.env.HasAccount() {
		return false
	}
	return campaign.ClaimEnabled(c, w.env.Account.Hex(), w.Claiming(c.ID))
}

// Contribute runs one step for campaign c. When allowance is below amount
// it approves the platform for exactly amount and stops; the next call,
// with the reloaded allowance, contributes. It never sends both.
func (w *Workflow) Contribute(ctx context.Context, c campaign.Campaign, amount, allowance *big.Int) Result {
	log := logger.For(ctx).WithFields(logrus.Fields{"campaign": c.ID, "amount": amount.String()})
	res := Result{CampaignID: c.ID, Amount: amount}

	switch {
	case !w.env.HasPlatform():
		return w.skip(log, res, errNoPlatform)
	case !w.env.HasAccount():
		return w.skip(log, res, errNoAccount)
	case !w.env.HasToken():
		return w.skip(log, res, errNoToken)
	case w.env.Writer == nil:
		return w.skip(log, res, platform.ErrReadOnly)
	case amount == nil || amount.Sign() < 0:
		res.Kind, res.Err = KindInvalid, errNegative
		log.Warn(res.Err)
		return w.emit(res)
	}
	if allowance == nil {
		allowance = new(big.Int)
	}

	next := StateContributing
	res.Action = ActionContribute
	if allowance.Cmp(amount) < 0 {
		next = StateApproving
		res.Action = ActionApprove
	}
	if !w.enter(c.ID, next) {
		return w.skip(log, res, errBusy)
	}

	var (
		hash common.Hash
		err  error
	)
	if next == StateApproving {
		log.WithField("allowance", allowance.String()).Info("allowance below amount; approving")
		hash, err = w.env.TokenContract().Approve(ctx, w.env.Platform, amount)
		if err == nil && w.reloadAllowance != nil {
			w.reloadAllowance(ctx)
		}
	} else {
		log.Info("contributing")
		hash, err = w.env.PlatformContract().Contribute(ctx, c.ID, amount)
	}
	w.leave(c.ID)

	res = w.settle(log, res, hash, err)
	w.runRefresh(ctx, log)
	return w.emit(res)
}

// Claim withdraws c's raised funds to its creator. It is a no-op unless the
// connected account created c, c is completed and no claim is in flight.
func (w *Workflow) Claim(ctx context.Context, c campaign.Campaign) Result {
	log := logger.For(ctx).WithField("campaign", c.ID)
	res := Result{CampaignID: c.ID, Action: ActionClaim}

	if !w.env.HasPlatform() {
		return w.skip(log, res, errNoPlatform)
	}
	if !w.env.HasAccount() {
		return w.skip(log, res, errNoAccount)
	}
	if w.env.Writer == nil {
		return w.skip(log, res, platform.ErrReadOnly)
	}

	w.mu.Lock()
	if !campaign.ClaimEnabled(c, w.env.Account.Hex(), w.claiming[c.ID]) {
		busy := w.claiming[c.ID]
		w.mu.Unlock()
		if busy {
			return w.skip(log, res, errBusy)
		}
		return w.skip(log, res, errNotAllowed)
	}
	w.claiming[c.ID] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.claiming, c.ID)
		w.mu.Unlock()
	}()

	log.Info("claiming funds")
	hash, err := w.env.PlatformContract().Withdraw(ctx, c.ID)
	res = w.settle(log, res, hash, err)
	w.runRefresh(ctx, log)
	return w.emit(res)
}

func (w *Workflow) enter(id uint64, s State) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.states[id] != StateIdle {
		return false
	}
	w.states[id] = s
	return true
}

func (w *Workflow) leave(id uint64) {
	w.mu.Lock()
	delete(w.states, id)
	w.mu.Unlock()
}

func (w *Workflow) settle(log *logrus.Entry, res Result, hash common.Hash, err error) Result {
	res.TxHash = hash
	res.Kind = Classify(err)
	res.Err = err
	res.OK = err == nil

	if hash != (common.Hash{}) {
		log = log.WithField("tx", hash.Hex())
	}
	if err != nil {
		log.WithError(err).WithField("kind", res.Kind.String()).Errorf("%s failed", res.Action)
	} else {
		log.Infof("%s confirmed", res.Action)
	}
	return res
}

func (w *Workflow) runRefresh(ctx context.Context, log *logrus.Entry) {
	if w.refresh == nil {
		return
	}
	if err := w.refresh(ctx); err != nil {
		log.WithError(err).Warn("refreshing campaigns")
	}
}

func (w *Workflow) skip(log *logrus.Entry, res Result, reason error) Result {
	res.Kind, res.Err = KindSkipped, reason
	log.WithError(reason).Debugf("%s skipped", res.Action)
	return w.emit(res)
}

func (w *Workflow) emit(res Result) Result {
	if w.handler != nil {
		w.handler(res)
	}
	return res
}
